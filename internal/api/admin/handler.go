package admin

import (
	"errors"
	"net/http"
	"time"

	"agency-platform/database"
	"agency-platform/internal/app/http/middleware"
	"agency-platform/internal/apperr"
	"agency-platform/internal/audit"
	"agency-platform/internal/domain/billing"
	"agency-platform/internal/domain/orders"
	"agency-platform/internal/domain/projects"
	"agency-platform/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct{}

type DashboardStats struct {
	TotalUsers     int64   `json:"total_users"`
	TotalOrders    int64   `json:"total_orders"`
	PendingOrders  int64   `json:"pending_orders"`
	ActiveProjects int64   `json:"active_projects"`
	TotalRevenue   float64 `json:"total_revenue"`
}

func (h *Handler) Dashboard(c *gin.Context) {
	var stats DashboardStats
	database.DB.Model(&users.User{}).Count(&stats.TotalUsers)
	database.DB.Model(&orders.Order{}).Count(&stats.TotalOrders)
	database.DB.Model(&orders.Order{}).Where("status = ?", orders.StatusPending).Count(&stats.PendingOrders)
	database.DB.Model(&projects.Project{}).Where("status = ?", projects.StatusActive).Count(&stats.ActiveProjects)
	database.DB.Model(&billing.Payment{}).
		Where("status = ?", billing.StatusSucceeded).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue)

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListUsers(c *gin.Context) {
	var list []users.User
	if err := database.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	sanitized := make([]users.Sanitized, 0, len(list))
	for i := range list {
		sanitized = append(sanitized, list[i].Sanitize())
	}
	c.JSON(http.StatusOK, gin.H{"users": sanitized})
}

func (h *Handler) ListOrders(c *gin.Context) {
	var list []orders.Order
	if err := database.DB.Preload("User").Order("created_at DESC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) ListPayments(c *gin.Context) {
	var list []billing.Payment
	if err := database.DB.Preload("User").Order("created_at DESC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

func (h *Handler) ListProjects(c *gin.Context) {
	var list []projects.Project
	if err := database.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

// UpdateOrderStatus is an admin override: any status is settable.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Status is required"))
		return
	}
	switch input.Status {
	case orders.StatusPending, orders.StatusPaid, orders.StatusInProgress, orders.StatusComplete, orders.StatusCancelled:
	default:
		apperr.Respond(c, apperr.Validation("Unknown order status"))
		return
	}

	var order orders.Order
	err := database.DB.Where("id = ?", c.Param("id")).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.NotFound("Order not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if err := database.DB.Model(&order).Update("status", input.Status).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	h.recordOverride(c, "order_status", zap.Uint("order_id", order.ID), zap.String("status", input.Status))
	order.Status = input.Status
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	res := database.DB.Where("id = ?", c.Param("id")).Delete(&orders.Order{})
	if res.Error != nil {
		apperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.NotFound("Order not found"))
		return
	}
	h.recordOverride(c, "order_delete", zap.String("order_id", c.Param("id")))
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// UpdateProject overrides stage, notes, progress, status or the due date.
func (h *Handler) UpdateProject(c *gin.Context) {
	var input struct {
		Stage           *string    `json:"stage"`
		Notes           *string    `json:"notes"`
		Status          *string    `json:"status"`
		ProgressPercent *int       `json:"progressPercent"`
		DueDate         *time.Time `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid project payload"))
		return
	}

	var project projects.Project
	err := database.DB.Where("id = ?", c.Param("id")).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.NotFound("Project not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	updates := map[string]interface{}{}
	if input.Stage != nil {
		if !projects.ValidStage(*input.Stage) {
			apperr.Respond(c, apperr.Validation("Unknown project stage"))
			return
		}
		updates["stage"] = *input.Stage
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.Status != nil {
		switch *input.Status {
		case projects.StatusNotStarted, projects.StatusActive, projects.StatusPaused, projects.StatusCompleted:
			updates["status"] = *input.Status
		default:
			apperr.Respond(c, apperr.Validation("Unknown project status"))
			return
		}
	}
	if input.ProgressPercent != nil {
		if *input.ProgressPercent < 0 || *input.ProgressPercent > 100 {
			apperr.Respond(c, apperr.Validation("Progress must be between 0 and 100"))
			return
		}
		updates["progress_percent"] = *input.ProgressPercent
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&project).Updates(updates).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
	}

	h.recordOverride(c, "project_update", zap.Uint("project_id", project.ID))
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Role is required"))
		return
	}
	switch input.Role {
	case users.RoleClient, users.RoleAdmin, users.RoleProjectManager:
	default:
		apperr.Respond(c, apperr.Validation("Unknown role"))
		return
	}

	res := database.DB.Model(&users.User{}).Where("id = ?", c.Param("id")).Update("role", input.Role)
	if res.Error != nil {
		apperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.NotFound("User not found"))
		return
	}

	h.recordOverride(c, "user_role", zap.String("user_id", c.Param("id")), zap.String("role", input.Role))
	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

func (h *Handler) recordOverride(c *gin.Context, kind string, fields ...zap.Field) {
	actor := audit.Anonymous
	if u := middleware.CurrentUser(c); u != nil {
		actor = audit.RedactEmail(u.Email)
	}
	all := append([]zap.Field{zap.String("kind", kind)}, fields...)
	audit.Record(audit.ActionAdminOverride, actor, all...)
}
