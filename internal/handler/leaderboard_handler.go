package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
	"github.com/nirwairkumar/nkc-assess-backend/internal/repository"
	"github.com/nirwairkumar/nkc-assess-backend/internal/response"
	"github.com/nirwairkumar/nkc-assess-backend/internal/service"
)

// LeaderboardHandler serves ranked attempt views for finished tests.
type LeaderboardHandler struct {
	leaderboards *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboards *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboards: leaderboards}
}

// Attempts godoc
// GET /api/v1/tests/:test_id/attempts
// Returns attempts in chronological order, most recent first.
func (h *LeaderboardHandler) Attempts(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempts, err := h.leaderboards.Attempts(c.Request.Context(), testID)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, perPage := pageParams(c)
	window, pagination := paginate(attempts, page, perPage)
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": window}, pagination)
}

// Leaderboard godoc
// GET /api/v1/tests/:test_id/leaderboard
// Returns the merit ordering when the test publishes its results.
func (h *LeaderboardHandler) Leaderboard(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	ranked, err := h.leaderboards.Leaderboard(c.Request.Context(), testID)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, perPage := pageParams(c)
	window, pagination := paginate(ranked, page, perPage)
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"leaderboard": window}, pagination)
}

func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	return page, perPage
}

// paginate slices one page out of the ranked list. Ranks are positional,
// so the window preserves the overall ordering.
func paginate(all []model.Attempt, page, perPage int) ([]model.Attempt, *response.Pagination) {
	total := len(all)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return all[start:end], response.NewPagination(page, perPage, total)
}

func (h *LeaderboardHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrResultsHidden):
		response.Fail(c, http.StatusForbidden, response.ErrResultsHidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
