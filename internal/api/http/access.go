package http

import (
	"context"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/user"
)

// courseAccess lets admins through, professors only into courses they own
// and students only into courses they are registered in.
func courseAccess(ctx context.Context, courses *course.SQLStore, courseID, sub, role string) error {
	switch role {
	case user.RoleAdmin:
		_, err := courses.Find(ctx, courseID)
		return err
	case user.RoleProfessor:
		_, err := courses.RequireOwner(ctx, courseID, sub)
		return err
	case user.RoleStudent:
		if _, err := courses.Find(ctx, courseID); err != nil {
			return err
		}
		ok, err := courses.IsRegistered(ctx, courseID, sub)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.KindForbidden, "not registered in course %s", courseID)
		}
		return nil
	}
	return apperr.New(apperr.KindForbidden, "role %q has no course access", role)
}
