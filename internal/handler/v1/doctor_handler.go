package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/scheduler/internal/domain/doctor"
	"github.com/clinicore/scheduler/internal/service"
)

type DoctorHandler struct {
	doctorSvc *service.DoctorService
}

func NewDoctorHandler(doctorSvc *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorSvc: doctorSvc}
}

type createDoctorRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Specialization string `json:"specialization"`
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	actor, ip := actorFrom(c)
	d, err := h.doctorSvc.CreateDoctor(c.Request.Context(), &doctor.CreateDoctorCommand{
		FullName:       req.FullName,
		Specialization: req.Specialization,
	}, actor, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, d)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.doctorSvc.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, d)
}

func (h *DoctorHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	doctors, err := h.doctorSvc.ListDoctors(c.Request.Context(), activeOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, doctors)
}
