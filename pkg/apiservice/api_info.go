package apiservice

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/pingcap-inc/sql2dw/pkg/runner"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

type ServiceStatus string

const (
	ServiceStatusRunning    ServiceStatus = "running"
	ServiceStatusFinished   ServiceStatus = "finished"
	ServiceStatusFatalError ServiceStatus = "fatal_error"
)

// APIInfo tracks the stage of every job. It implements runner.StatusRecorder.
type APIInfo struct {
	stages             map[string]runner.JobStage
	errorMessages      map[string]string
	globalStatus       ServiceStatus
	globalErrorMessage string
	mu                 sync.Mutex
}

func NewAPIInfo() *APIInfo {
	return &APIInfo{
		stages:        make(map[string]runner.JobStage),
		errorMessages: make(map[string]string),
		globalStatus:  ServiceStatusRunning,
	}
}

func (s *APIInfo) registerRouter(router *gin.Engine) {
	router.GET("/info", func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.globalStatus == ServiceStatusFatalError {
			c.JSON(http.StatusOK, gin.H{
				"status":        s.globalStatus,
				"error_message": s.globalErrorMessage,
			})
		} else {
			c.JSON(http.StatusOK, gin.H{
				"status":        s.globalStatus,
				"jobs":          s.stages,
				"error_message": s.errorMessages,
			})
		}
	})
}

func (s *APIInfo) SetJobStage(id int, stage runner.JobStage, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := strconv.Itoa(id)
	if s.stages[job].Terminal() {
		log.Warn("Ignored stage change of a finished job", zap.String("job", job), zap.String("stage", string(stage)))
		return
	}
	s.stages[job] = stage
	if err != nil {
		s.errorMessages[job] = err.Error()
	}
}

// SetFinished marks the batch as done.
func (s *APIInfo) SetFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.globalStatus == ServiceStatusRunning {
		s.globalStatus = ServiceStatusFinished
	}
}

func (s *APIInfo) SetGlobalStatusFatalError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.globalStatus == ServiceStatusFatalError {
		log.Warn("Ignored new fatal errors", zap.Error(err))
		return
	}
	s.globalStatus = ServiceStatusFatalError
	s.globalErrorMessage = err.Error()
}
