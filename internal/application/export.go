package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ExportNDJSON writes every user view to w, one JSON object per line,
// oldest first. It returns the number of users written.
func (s *Service) ExportNDJSON(ctx context.Context, w io.Writer) (int, error) {
	users, err := s.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	enc := json.NewEncoder(w)
	for i := range users {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := enc.Encode(&users[i]); err != nil {
			return i, fmt.Errorf("encode user: %w", err)
		}
	}
	return len(users), nil
}
