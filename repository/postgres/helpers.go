package postgres

import "github.com/taskwave/backend/domain"

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullStatus(s *domain.TaskStatus) interface{} {
	if s == nil {
		return nil
	}
	return string(*s)
}

func nullPriority(p *domain.TaskPriority) interface{} {
	if p == nil {
		return nil
	}
	return string(*p)
}
