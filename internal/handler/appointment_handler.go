package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/model"
	"github.com/clinicore/booking/internal/service"
)

// Handler exposes the booking core over HTTP. The envelope is deliberately
// thin: inputs bind to the service-layer operations one-to-one and errors are
// translated by taxonomy, nothing more.
type Handler struct {
	appointments *service.AppointmentService
	assignments  *service.AssignmentService
	schedules    *service.ScheduleService
}

func New(
	appointments *service.AppointmentService,
	assignments *service.AssignmentService,
	schedules *service.ScheduleService,
) *Handler {
	return &Handler{
		appointments: appointments,
		assignments:  assignments,
		schedules:    schedules,
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	appts := rg.Group("/appointments")
	{
		appts.POST("", h.createAppointment)
		appts.POST("/temporary", h.createTemporaryAppointment)
		appts.GET("/:id", h.getAppointment)
		appts.DELETE("/:id", h.deleteAppointment)
		appts.POST("/:id/confirm", h.confirmAppointment)
		appts.POST("/:id/start", h.startAppointment)
		appts.POST("/:id/complete", h.completeAppointment)
		appts.POST("/:id/no-show", h.markNoShow)
		appts.POST("/:id/cancel", h.cancelAppointment)
		appts.POST("/:id/reschedule", h.rescheduleAppointment)
		appts.POST("/:id/assign-doctor", h.assignDoctor)
		appts.GET("/:id/available-doctors", h.availableDoctors)
	}

	rg.GET("/unassigned-appointments", h.unassignedAppointments)

	rg.GET("/doctors/:id/appointments", h.doctorAppointments)
	rg.GET("/patients/:id/appointments", h.patientAppointments)

	rg.GET("/doctors/:id/slots", h.doctorFreeSlots)
	rg.GET("/schedules/:id/slots", h.scheduleSlots)
	rg.POST("/schedules/:id/slots/generate", h.generateSlots)
}

type createAppointmentInput struct {
	PatientID        string  `json:"patient_id" binding:"required,uuid"`
	DoctorID         string  `json:"doctor_id" binding:"omitempty,uuid"`
	ServiceID        string  `json:"service_id" binding:"required,uuid"`
	SlotID           string  `json:"slot_id" binding:"omitempty,uuid"`
	Date             string  `json:"appointment_date" binding:"required"`
	Time             string  `json:"appointment_time" binding:"required"`
	SelectedSlotTime string  `json:"selected_slot_time"`
	DurationMin      int     `json:"duration_minutes"`
	Amount           float64 `json:"amount"`
}

type cancelInput struct {
	Reason string `json:"reason" binding:"required"`
}

type rescheduleInput struct {
	NewSlotID string `json:"new_slot_id" binding:"required,uuid"`
	Reason    string `json:"reason"`
}

type assignDoctorInput struct {
	DoctorID string `json:"doctor_id" binding:"required,uuid"`
	SlotID   string `json:"slot_id" binding:"required,uuid"`
}

type generateSlotsInput struct {
	SlotMinutes int `json:"slot_minutes" binding:"required,gt=0"`
}

func (h *Handler) createAppointment(c *gin.Context) {
	h.create(c, h.appointments.CreateAppointment)
}

func (h *Handler) createTemporaryAppointment(c *gin.Context) {
	h.create(c, h.appointments.CreateTemporaryAppointment)
}

func (h *Handler) create(c *gin.Context, op func(ctx context.Context, in service.CreateAppointmentInput) (*model.Appointment, error)) {
	var in createAppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := op(c.Request.Context(), service.CreateAppointmentInput{
		PatientID:        in.PatientID,
		DoctorID:         in.DoctorID,
		ServiceID:        in.ServiceID,
		SlotID:           in.SlotID,
		Date:             in.Date,
		Time:             in.Time,
		SelectedSlotTime: in.SelectedSlotTime,
		DurationMin:      in.DurationMin,
		Amount:           in.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointmentResponse(appt))
}

func (h *Handler) getAppointment(c *gin.Context) {
	appt, err := h.appointments.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse(appt))
}

func (h *Handler) deleteAppointment(c *gin.Context) {
	if err := h.appointments.DeleteAppointment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) confirmAppointment(c *gin.Context) {
	h.mutate(c, h.appointments.ConfirmAppointment)
}

func (h *Handler) startAppointment(c *gin.Context) {
	h.mutate(c, h.appointments.StartAppointment)
}

func (h *Handler) completeAppointment(c *gin.Context) {
	h.mutate(c, h.appointments.CompleteAppointment)
}

func (h *Handler) markNoShow(c *gin.Context) {
	h.mutate(c, h.appointments.MarkNoShow)
}

func (h *Handler) mutate(c *gin.Context, op func(ctx context.Context, id string) (*model.Appointment, error)) {
	appt, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse(appt))
}

func (h *Handler) cancelAppointment(c *gin.Context) {
	var in cancelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	appt, err := h.appointments.CancelAppointment(c.Request.Context(), c.Param("id"), in.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse(appt))
}

func (h *Handler) rescheduleAppointment(c *gin.Context) {
	var in rescheduleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	appt, err := h.appointments.RescheduleAppointment(c.Request.Context(), c.Param("id"), in.NewSlotID, in.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse(appt))
}

func (h *Handler) assignDoctor(c *gin.Context) {
	var in assignDoctorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	appt, err := h.appointments.AssignDoctorToAppointment(c.Request.Context(), c.Param("id"), in.DoctorID, in.SlotID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse(appt))
}

func (h *Handler) availableDoctors(c *gin.Context) {
	candidates, err := h.assignments.AvailableDoctorsForAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, gin.H{
			"doctor": gin.H{
				"id":    cand.Doctor.ID,
				"name":  cand.Doctor.Name,
				"email": cand.Doctor.Email,
			},
			"slot": slotResponse(cand.Slot),
		})
	}
	c.JSON(http.StatusOK, gin.H{"candidates": out})
}

func (h *Handler) unassignedAppointments(c *gin.Context) {
	page, pageSize := pageParams(c)
	status := model.AppointmentStatus(c.Query("status"))

	result, err := h.assignments.UnassignedAppointments(c.Request.Context(), status, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(result))
}

func (h *Handler) doctorAppointments(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.appointments.ListByDoctor(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(result))
}

func (h *Handler) patientAppointments(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.appointments.ListByPatient(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(result))
}

func (h *Handler) doctorFreeSlots(c *gin.Context) {
	slots, err := h.schedules.ListFreeSlots(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slotsResponse(slots)})
}

func (h *Handler) scheduleSlots(c *gin.Context) {
	slots, err := h.schedules.ListSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slotsResponse(slots)})
}

func (h *Handler) generateSlots(c *gin.Context) {
	var in generateSlotsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slots, err := h.schedules.GenerateSlots(c.Request.Context(), c.Param("id"), in.SlotMinutes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slots": slotsResponse(slots)})
}

func pageParams(c *gin.Context) (int, int) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "limit", 10)
	return page, pageSize
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func respondError(c *gin.Context, err error) {
	var nf *service.NotFoundError
	var br *service.BadRequestError
	var cf *service.ConflictError
	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.As(err, &br):
		c.JSON(http.StatusBadRequest, gin.H{"error": br.Error()})
	case errors.As(err, &cf):
		c.JSON(http.StatusConflict, gin.H{"error": cf.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func appointmentResponse(a *model.Appointment) gin.H {
	out := gin.H{
		"id":                 a.ID,
		"patient_id":         a.PatientID,
		"service_id":         a.ServiceID,
		"appointment_date":   a.AppointmentDate,
		"appointment_time":   a.AppointmentTime,
		"selected_slot_time": a.SelectedSlotTime,
		"duration_minutes":   a.DurationMin,
		"status":             a.Status,
		"amount":             a.Amount,
		"is_paid":            a.IsPaid,
		"meeting_link":       a.MeetingLink,
		"created_at":         a.CreatedAt,
	}
	if a.DoctorID != nil {
		out["doctor_id"] = *a.DoctorID
	}
	if a.SlotID != nil {
		out["slot_id"] = *a.SlotID
	}
	if a.CancelledAt != nil {
		out["cancelled_at"] = *a.CancelledAt
		out["cancellation_reason"] = a.CancellationReason
	}
	if a.ConfirmedAt != nil {
		out["confirmed_at"] = *a.ConfirmedAt
	}
	if a.CompletedAt != nil {
		out["completed_at"] = *a.CompletedAt
	}
	return out
}

func slotResponse(s model.Slot) gin.H {
	return gin.H{
		"id":           s.ID,
		"schedule_id":  s.ScheduleID,
		"start_time":   s.StartTime,
		"end_time":     s.EndTime,
		"is_available": s.IsAvailable,
	}
}

func slotsResponse(slots []model.Slot) []gin.H {
	out := make([]gin.H, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse(s))
	}
	return out
}

func pageResponse(p booking.Page[model.Appointment]) gin.H {
	items := make([]gin.H, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, appointmentResponse(&p.Items[i]))
	}
	return gin.H{
		"items":     items,
		"page":      p.Page,
		"page_size": p.PageSize,
		"total":     p.Total,
		"has_next":  p.HasNext,
		"has_prev":  p.HasPrev,
	}
}
