package form

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, formService *FormService, logService LogServicePort, auth gin.HandlerFunc) {
	fc := &FormController{FormService: formService, LogService: logService}

	public := r.Group("/api/forms/public")
	{
		public.GET("/:id", fc.GetPublicForm)
		public.POST("/:id/submit", fc.SubmitForm)
	}

	group := r.Group("/api/forms")
	group.Use(auth)
	{
		group.GET("", fc.GetForms)
		group.POST("", fc.CreateForm)
		group.GET("/:id", fc.GetForm)
		group.PUT("/:id", fc.UpdateForm)
		group.DELETE("/:id", fc.DeleteForm)
		group.GET("/:id/submissions", fc.GetSubmissions)
		group.POST("/:id/restore", fc.RestoreForm)
		group.DELETE("/:id/permanent", fc.PurgeForm)
	}
}
