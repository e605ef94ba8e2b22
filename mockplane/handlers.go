package mockplane

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"whisk-action-client/bundle"
	"whisk-action-client/models"
)

// mockDelayParam simulates slow actions: a numeric millisecond value under
// this key delays execution, and a delay past the wait window forces the
// timeout-with-identifier path on blocking invocations.
const mockDelayParam = "_mockDelayMs"

// fiber reuses its request buffers between requests, so route params must
// be copied before anything retains them past the handler: the store keeps
// them as action identities and the non-blocking invoke goroutine reads
// the namespace after the handler has returned.
func namespaceParam(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("namespace"))
}

func entityParam(c *fiber.Ctx) string {
	return utils.CopyString(strings.Trim(c.Params("+"), "/"))
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "The requested resource does not exist.",
	})
}

func (s *Server) listActions(c *fiber.Ctx) error {
	return c.JSON(s.store.list(namespaceParam(c)))
}

func (s *Server) getAction(c *fiber.Ctx) error {
	action, ok := s.store.get(namespaceParam(c), entityParam(c))
	if !ok {
		return notFound(c)
	}
	return c.JSON(action)
}

func (s *Server) putAction(c *fiber.Ctx) error {
	var action models.Action
	if err := c.BodyParser(&action); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if action.Exec == nil || action.Exec.Kind == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "exec is required",
		})
	}

	overwrite := c.Query("overwrite") == "true"
	stored, conflict := s.store.put(namespaceParam(c), entityParam(c), &action, overwrite)
	if conflict {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "resource already exists",
		})
	}
	return c.JSON(stored)
}

func (s *Server) deleteAction(c *fiber.Ctx) error {
	if !s.store.delete(namespaceParam(c), entityParam(c)) {
		return notFound(c)
	}
	return c.JSON(fiber.Map{})
}

func (s *Server) invokeAction(c *fiber.Ctx) error {
	namespace := namespaceParam(c)
	action, ok := s.store.get(namespace, entityParam(c))
	if !ok {
		return notFound(c)
	}

	params := map[string]interface{}{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	id := uuid.NewString()
	delay := mockDelay(params)
	blocking := c.Query("blocking") == "true"

	if !blocking || delay >= s.waitWindow {
		go func() {
			if delay > 0 {
				time.Sleep(delay)
			}
			s.store.putActivation(s.execute(id, namespace, action, params))
		}()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"activationId": id})
	}

	if delay > 0 {
		time.Sleep(delay)
	}
	activation := s.execute(id, namespace, action, params)
	s.store.putActivation(activation)
	if !activation.Response.Success {
		return c.Status(fiber.StatusBadGateway).JSON(activation)
	}
	return c.JSON(activation)
}

func (s *Server) getActivation(c *fiber.Ctx) error {
	record, ok := s.store.getActivation(c.Params("id"))
	if !ok {
		return notFound(c)
	}
	return c.JSON(record)
}

// execute runs an action as the identity function over its merged
// parameters: bound parameters first, invocation payload on top. Inline
// code containing "fail" produces an unsuccessful activation, as does an
// archive whose bundle fails manifest validation.
func (s *Server) execute(id, namespace string, action *models.Action, params map[string]interface{}) *models.Activation {
	start := time.Now()

	merged := action.Parameters.ToMap()
	for key, value := range params {
		merged[key] = value
	}

	response := models.ActivationResponse{Success: true, Status: "success", Result: merged}
	if action.Exec != nil && action.Exec.Binary {
		raw, err := base64.StdEncoding.DecodeString(action.Exec.Code)
		if err == nil {
			_, err = bundle.ReadManifest(raw)
		}
		if err != nil {
			response = models.ActivationResponse{
				Success: false,
				Status:  "action developer error",
				Result:  map[string]interface{}{"error": err.Error()},
			}
		}
	} else if action.Exec != nil && strings.Contains(action.Exec.Code, "fail") {
		response = models.ActivationResponse{
			Success: false,
			Status:  "application error",
			Result:  map[string]interface{}{"error": "action returned an error"},
		}
	}

	end := time.Now()
	return &models.Activation{
		ActivationID: id,
		Namespace:    namespace,
		Name:         action.Name,
		Start:        start.UnixMilli(),
		End:          end.UnixMilli(),
		Duration:     end.Sub(start).Milliseconds(),
		Logs:         []string{fmt.Sprintf("invoked %s/%s", namespace, action.Name)},
		Response:     response,
	}
}

func mockDelay(params map[string]interface{}) time.Duration {
	raw, ok := params[mockDelayParam]
	if !ok {
		return 0
	}
	ms, ok := raw.(float64)
	if !ok || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
