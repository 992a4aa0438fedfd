package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/autoservice-manager/workshop-api/config"
	"github.com/autoservice-manager/workshop-api/services"
	"github.com/autoservice-manager/workshop-api/workflow"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const defaultShopName = "AutoService"

// respondError writes the error envelope for err. Unknown errors are logged
// and reported as INTERNAL_ERROR without their message.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		body := gin.H{
			"code":    string(svcErr.Kind),
			"message": svcErr.Message,
		}
		if details := svcErr.Details(); len(details) > 0 {
			body["details"] = details
		}
		c.JSON(statusForKind(svcErr.Kind), gin.H{"success": false, "error": body})
		return
	}

	var patchErr *workflow.PatchError
	if errors.As(err, &patchErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    string(services.KindValidation),
				"message": patchErr.Reason,
			},
		})
		return
	}

	log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Internal server error",
		},
	})
}

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindInvalidTransition, services.KindInsufficientStock, services.KindInvalidState, services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondBindError reports a request body that failed to bind
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondDeleted(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid " + name,
			},
		})
		return 0, false
	}
	return uint(id), true
}

// pageParams reads the skip and limit query parameters
func pageParams(c *gin.Context) (skip, limit int, ok bool) {
	for _, p := range []struct {
		name string
		dest *int
	}{{"skip", &skip}, {"limit", &limit}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid " + p.name + " parameter",
				},
			})
			return 0, 0, false
		}
		*p.dest = v
	}
	return skip, limit, true
}

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB())
}

func partsLedger() *services.PartsLedger {
	return services.NewPartsLedger(config.GetDB())
}

func catalogService() *services.CatalogService {
	return services.NewCatalogService(config.GetDB())
}

func invoiceFinalizer() *services.InvoiceFinalizer {
	shopName := defaultShopName
	if cfg := config.GetConfig(); cfg != nil && cfg.ShopName != "" {
		shopName = cfg.ShopName
	}
	return services.NewInvoiceFinalizer(config.GetDB(), services.GetDocumentStore(), services.NewInvoiceRenderer(shopName))
}
