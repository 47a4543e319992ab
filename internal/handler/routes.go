package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/ugportal-api/internal/middleware"
	"github.com/noah-isme/ugportal-api/internal/models"
)

// Routes bundles everything mounted under the API prefix.
type Routes struct {
	Auth       *AuthHandler
	Students   *StudentHandler
	Professors *ProfessorHandler
	Attendance *AttendanceHandler
	Tokens     middleware.TokenValidator
	Audit      middleware.AuditWriter
	Logger     *zap.Logger
}

// Register mounts the student and professor route groups on api.
func (r Routes) Register(api *gin.RouterGroup) {
	authenticated := middleware.JWT(r.Tokens)
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	professorOnly := middleware.RequireRoles(models.RoleProfessor)

	students := api.Group("/student")
	students.POST("/register", r.Students.Register)
	students.POST("/login", r.Auth.StudentLogin)
	students.POST("/linksubject", authenticated, professorOnly, r.Students.LinkSubject)

	self := students.Group("", authenticated, studentOnly)
	self.GET("/profile", r.Students.Profile)
	self.PUT("/profile", r.Students.UpdateProfile)
	self.GET("/attendance", r.Attendance.StudentAttendance)
	self.GET("/available-subjects", r.Students.AvailableSubjects)
	self.POST("/enroll", r.Students.Enroll)

	professors := api.Group("/professor")
	professors.POST("/register", r.Professors.Register)
	professors.POST("/login", r.Auth.ProfessorLogin)

	staff := professors.Group("", authenticated, professorOnly)
	staff.GET("/profile", r.Professors.Profile)
	staff.PUT("/profile", r.Professors.UpdateProfile)
	staff.GET("/dashboard", r.Professors.Dashboard)
	staff.POST("/create-subject", r.Professors.CreateSubject)
	staff.POST("/upload-marks", r.Professors.UploadMarks)
	staff.POST("/mark-attendance",
		middleware.Audit(r.Audit, r.Logger, models.AuditActionAttendanceMark, models.AuditResourceAttendanceBatch),
		r.Attendance.Mark,
	)
	staff.PUT("/modify-attendance", r.Attendance.Modify)
	staff.GET("/attendance", r.Attendance.SubjectAttendance)
	staff.GET("/attendance/:id/history", r.Attendance.History)
	staff.GET("/all-attendance", r.Attendance.ListRecords)
	staff.GET("/all-attendance/export", r.Attendance.Export)
}
