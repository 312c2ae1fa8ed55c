package httpapi

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"bizflow/pkg/onboarding"
)

func (s *Server) createSession(c *fiber.Ctx) error {
	session, err := s.svc.Onboarding.Create()
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	state, err := session.State(ctx)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(state)
}

// withSession resolves the :id parameter and runs op against the session.
// op takes the receiver first so method expressions can be passed directly.
func (s *Server) withSession(c *fiber.Ctx, op func(*onboarding.Session, context.Context) (onboarding.State, error)) error {
	session, err := s.svc.Onboarding.Get(c.Params("id"))
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	state, err := op(session, ctx)
	if err != nil {
		return err
	}
	return c.JSON(state)
}

func (s *Server) sessionState(c *fiber.Ctx) error {
	return s.withSession(c, (*onboarding.Session).State)
}

func (s *Server) sessionNext(c *fiber.Ctx) error {
	return s.withSession(c, (*onboarding.Session).Next)
}

func (s *Server) sessionPrevious(c *fiber.Ctx) error {
	return s.withSession(c, (*onboarding.Session).Previous)
}

func (s *Server) sessionSign(c *fiber.Ctx) error {
	return s.withSession(c, (*onboarding.Session).Sign)
}

func (s *Server) updateSessionDetails(c *fiber.Ctx) error {
	var details onboarding.Details
	if err := c.BodyParser(&details); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid JSON")
	}
	return s.withSession(c, func(session *onboarding.Session, ctx context.Context) (onboarding.State, error) {
		return session.UpdateDetails(ctx, details)
	})
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	if err := s.svc.Onboarding.Remove(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
