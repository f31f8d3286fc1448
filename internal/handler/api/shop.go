package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "flashsale/internal/handler/dto/request"
	resdto "flashsale/internal/handler/dto/response"
	"flashsale/internal/usecase/commands"
	"flashsale/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ShopHandler struct {
	shopQueries  queries.ShopQueries
	shopCommands commands.ShopCommands
}

func NewShopHandler(shopQueries queries.ShopQueries, shopCommands commands.ShopCommands) *ShopHandler {
	return &ShopHandler{
		shopQueries:  shopQueries,
		shopCommands: shopCommands,
	}
}

func (h *ShopHandler) GetShop(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shop id",
		})
		return
	}

	view, err := h.shopQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Shop not found",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromShopView(view))
}

func (h *ShopHandler) UpdateShop(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shop id",
		})
		return
	}

	var req reqdto.UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.shopCommands.Update(c.Request.Context(), req.ToDomain(id)); err != nil {
		if errors.Is(err, commands.ErrShopNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Shop not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ShopHandler) WarmShop(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shop id",
		})
		return
	}

	if err := h.shopCommands.Warm(c.Request.Context(), id); err != nil {
		if errors.Is(err, commands.ErrShopNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Shop not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.Status(http.StatusNoContent)
}
