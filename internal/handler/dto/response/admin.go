package response

import (
	"time"

	"coupon-marketplace/internal/worker"
)

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type WorkerHeartbeatResponse struct {
	Task                string     `json:"task"`
	Interval            string     `json:"interval"`
	LastRunAt           *time.Time `json:"lastRunAt,omitempty"`
	LastSuccessAt       *time.Time `json:"lastSuccessAt,omitempty"`
	LastError           string     `json:"lastError,omitempty"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	Runs                int64      `json:"runs"`
}

type WorkersHealthResponse struct {
	Status  string                    `json:"status"`
	Stale   []string                  `json:"stale,omitempty"`
	Workers []WorkerHeartbeatResponse `json:"workers"`
}

func FromHeartbeats(hbs []worker.Heartbeat) []WorkerHeartbeatResponse {
	resp := make([]WorkerHeartbeatResponse, 0, len(hbs))
	for _, hb := range hbs {
		resp = append(resp, WorkerHeartbeatResponse{
			Task:                hb.Task,
			Interval:            hb.Interval.String(),
			LastRunAt:           hb.LastRunAt,
			LastSuccessAt:       hb.LastSuccessAt,
			LastError:           hb.LastError,
			ConsecutiveFailures: hb.ConsecutiveFailures,
			Runs:                hb.Runs,
		})
	}
	return resp
}
