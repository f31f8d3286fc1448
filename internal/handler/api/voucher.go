package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "flashsale/internal/handler/dto/request"
	resdto "flashsale/internal/handler/dto/response"
	"flashsale/internal/handler/middleware"
	"flashsale/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type VoucherHandler struct {
	seckillCommands commands.SeckillCommands
	voucherCommands commands.VoucherCommands
}

func NewVoucherHandler(seckillCommands commands.SeckillCommands, voucherCommands commands.VoucherCommands) *VoucherHandler {
	return &VoucherHandler{
		seckillCommands: seckillCommands,
		voucherCommands: voucherCommands,
	}
}

func (h *VoucherHandler) CreateSeckillVoucher(c *gin.Context) {
	var req reqdto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	id, err := h.voucherCommands.CreateSeckillVoucher(c.Request.Context(), req.ToInput())
	if err != nil {
		if errors.Is(err, commands.ErrInvalidVoucher) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid voucher data",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusCreated, resdto.CreateVoucherResponse{ID: id})
}

func (h *VoucherHandler) Seckill(c *gin.Context) {
	voucherID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || voucherID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid voucher id",
		})
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	orderID, err := h.seckillCommands.Seckill(c.Request.Context(), userID, voucherID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrVoucherNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Voucher not found",
			})
		case errors.Is(err, commands.ErrSeckillNotStarted):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Seckill has not started",
			})
		case errors.Is(err, commands.ErrSeckillEnded):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Seckill has ended",
			})
		case errors.Is(err, commands.ErrStockExhausted):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Stock exhausted",
			})
		case errors.Is(err, commands.ErrDuplicateOrder):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Already purchased",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.SeckillResponse{OrderID: strconv.FormatInt(orderID, 10)})
}
