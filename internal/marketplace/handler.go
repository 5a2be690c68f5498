package marketplace

import (
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/permission"
	"github.com/jordymora1978/dropux-admin/internal/response"
	"github.com/jordymora1978/dropux-admin/internal/utils"
	"github.com/jordymora1978/dropux-admin/internal/workflow"
)

func SitesHandler(c *fiber.Ctx) error {
	return response.Success(c, Sites(), "Sites retrieved successfully")
}

func ConnectStoreHandler(c *fiber.Ctx) error {
	var body ConnectRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if errs := utils.Validate(body); errs != nil {
		return response.ValidationError(c, errs)
	}

	userID, _ := c.Locals("user_id").(uint)
	res, err := ConnectStore(database.DB, userID, body)
	if err != nil {
		if errors.Is(err, ErrUnknownSite) {
			return response.ValidationError(c, map[string]string{"site_id": "Unknown site"})
		}
		return response.InternalError(c, "Failed to start store connection")
	}

	return connectJSON(c, res)
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Dropux</title></head>
<body>
<p>{{.Message}}</p>
<script>
  (function () {
    var msg = {type: {{.Type}}, message: {{.Message}}};
    if (window.opener) {
      window.opener.postMessage(msg, {{.Origin}});
    }
    window.close();
  })();
</script>
</body>
</html>
`))

// CallbackHandler finishes the OAuth redirect inside the popup and reports
// the outcome to the opener window.
func CallbackHandler(c *fiber.Ctx) error {
	log := logger.WithModule("marketplace")
	state := c.Query("state")

	if e := c.Query("error"); e != "" {
		msg := c.Query("error_description", e)
		FailConnection(database.DB, state, "authorization denied: "+msg)
		log.Warnf("⚠️ Authorization denied: %s", msg)
		return renderCallback(c, fiber.StatusOK, MessageError, sanitizer.Sanitize(msg))
	}

	code := c.Query("code")
	if code == "" {
		FailConnection(database.DB, state, "missing authorization code")
		return renderCallback(c, fiber.StatusBadRequest, MessageError, "Falta el código de autorización")
	}

	store, err := CompleteConnection(c.UserContext(), database.DB, state, code)
	if err != nil {
		log.Errorf("❌ Store connection failed: %v", err)
		if errors.Is(err, ErrInvalidState) {
			return renderCallback(c, fiber.StatusBadRequest, MessageError, "La sesión de conexión expiró o no es válida")
		}
		return renderCallback(c, fiber.StatusBadGateway, MessageError, "No se pudo completar la conexión con Mercado Libre")
	}

	return renderCallback(c, fiber.StatusOK, MessageSuccess, "Tienda "+store.StoreName+" conectada")
}

func renderCallback(c *fiber.Ctx, status int, kind, message string) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return callbackPage.Execute(c.Response().BodyWriter(), map[string]string{
		"Type":    kind,
		"Message": message,
		"Origin":  settings.FrontendOrigin,
	})
}

func ListStoresHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(uint)
	stores, err := ListStores(database.DB, userID, isAdmin(c))
	if err != nil {
		return response.InternalError(c, "Failed to fetch stores")
	}
	return response.Success(c, stores, "Stores retrieved successfully")
}

func DeleteStoreHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(uint)
	err := DeleteStore(database.DB, c.Params("id"), userID, isAdmin(c))
	switch {
	case errors.Is(err, ErrStoreNotFound):
		return response.NotFound(c, "Store")
	case errors.Is(err, ErrNotOwner):
		return response.Forbidden(c, "You can only remove your own stores")
	case err != nil:
		return response.InternalError(c, "Failed to delete store")
	}
	return response.NoContent(c)
}

func ReconnectStoreHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(uint)
	res, err := ReconnectStore(database.DB, c.Params("id"), userID, isAdmin(c))
	switch {
	case errors.Is(err, ErrStoreNotFound):
		return response.NotFound(c, "Store")
	case errors.Is(err, ErrNotOwner):
		return response.Forbidden(c, "You can only reconnect your own stores")
	case errors.Is(err, workflow.ErrInvalidTransition):
		return response.Conflict(c, "Store is already waiting for authorization")
	case err != nil:
		return response.InternalError(c, "Failed to reconnect store")
	}

	return connectJSON(c, res)
}

func StoreHistoryHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(uint)
	history, err := StoreHistory(database.DB, c.Params("id"), userID, isAdmin(c))
	switch {
	case errors.Is(err, ErrStoreNotFound):
		return response.NotFound(c, "Store")
	case errors.Is(err, ErrNotOwner):
		return response.Forbidden(c, "You can only view your own stores")
	case err != nil:
		return response.InternalError(c, "Failed to fetch store history")
	}
	return response.Success(c, history, "Store history retrieved successfully")
}

// connectJSON writes the connect response at the top level of the body.
func connectJSON(c *fiber.Ctx, res *ConnectResponse) error {
	return response.Authorization(c, res.StoreID, res.AuthURL, res.RedirectURI, res.Instructions)
}

func isAdmin(c *fiber.Ctx) bool {
	name, _ := c.Locals("role").(string)
	r, _ := permission.ParseRole(name)
	return r == permission.SuperAdmin || r == permission.Admin
}
