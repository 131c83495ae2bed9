package adaptor

import (
	"fmt"
	"net/http"

	"ski-portal/internal/scheduler"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// JobBoard exposes the background scheduler to admins. It is nil when the
// scheduler is disabled.
type JobBoard interface {
	Jobs() []scheduler.JobInfo
	Job(id string) (scheduler.JobInfo, bool)
	RunJobNow(id string) error
}

type JobHandler struct {
	jobs JobBoard
	log  *zap.Logger
}

func NewJobHandler(jobs JobBoard, log *zap.Logger) *JobHandler {
	return &JobHandler{
		jobs: jobs,
		log:  log.With(zap.String("handler", "job")),
	}
}

// ListJobs handles GET /api/admin/jobs (admin)
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobInfo{}
	if h.jobs != nil {
		jobs = h.jobs.Jobs()
	}

	utils.ResponseSuccess(w, "success", jobs)
}

// RunJob handles POST /api/admin/jobs/{id}/run (admin)
func (h *JobHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	info, err := triggerJob(h.jobs, id)
	if err != nil {
		respondServiceError(h.log, w, err, "run job")
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	h.log.Info("Job triggered by admin",
		zap.String("job", id),
		zap.String("user_id", userID.String()),
	)
	utils.ResponseJSON(w, http.StatusAccepted, true, "Job triggered", info, nil)
}

func triggerJob(jobs JobBoard, id string) (scheduler.JobInfo, error) {
	if jobs == nil {
		return scheduler.JobInfo{}, fmt.Errorf("job %s not found: scheduler disabled", id)
	}
	if _, ok := jobs.Job(id); !ok {
		return scheduler.JobInfo{}, fmt.Errorf("job %s not found", id)
	}
	if err := jobs.RunJobNow(id); err != nil {
		return scheduler.JobInfo{}, err
	}
	info, _ := jobs.Job(id)
	return info, nil
}
