package handlers

import (
	"net/http"

	"cointap/internal/tasks"

	"github.com/gin-gonic/gin"
)

// taskView joins a generated task with the caller's completion/eligibility.
type taskView struct {
	tasks.Task
	Completed bool `json:"completed"`
	CanClaim  bool `json:"can_claim"`
}

// ListTasks returns today's task list for the caller's streak, with
// completion and eligibility flags.
func (h *Handler) ListTasks(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	snap := sess.Snapshot()
	list := sess.DailyTasks()

	views := make([]taskView, 0, len(list))
	for _, t := range list {
		views = append(views, taskView{
			Task:      t,
			Completed: snap.TaskCompleted(t.ID),
			CanClaim:  sess.CanClaimTask(t.ID),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":  views,
		"streak": snap.LoginStreak,
	})
}

// ClaimTask claims a daily task. The reward is looked up in the server-side
// generated list, never taken from the request.
func (h *Handler) ClaimTask(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	id := c.Param("id")
	task := tasks.Find(sess.DailyTasks(), id)
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
		return
	}

	if !sess.CanClaimTask(id) {
		c.JSON(http.StatusConflict, gin.H{"error": "task not claimable"})
		return
	}

	if !sess.ClaimDailyTask(c.Request.Context(), id, task.Reward) {
		c.JSON(http.StatusConflict, gin.H{"error": "task already claimed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reward": task.Reward,
		"state":  sess.Snapshot(),
	})
}
