package server

import "github.com/gin-gonic/gin"

// NewRouter wires every endpoint onto one engine. The OAuth proxy and
// the two assistants share nothing but the process.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), CORS(), RequestLogger())

	r.GET("/health", h.Health)

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/google", h.AuthURL)
		authGroup.GET("/google/callback", h.CallbackRedirect)
		authGroup.POST("/google/callback", h.CallbackJSON)
		authGroup.GET("/user", h.UserInfo)
	}

	// Timetable assistant
	r.POST("/generate_timetable", h.GenerateTimetable)
	r.POST("/identify_frogs", h.IdentifyFrogs)
	r.POST("/upload_study_material", h.UploadStudyMaterial)
	r.POST("/add_study_note", h.AddStudyNote)
	r.GET("/search_materials", h.SearchMaterials)
	r.POST("/rate_timetable", h.RateTimetable)
	r.POST("/complete_frog", h.CompleteFrog)
	r.GET("/daily_frog_report", h.DailyFrogReport)
	r.POST("/add_user_preference", h.AddUserPreference)
	r.GET("/memory_stats", h.MemoryStats)
	r.GET("/etf_recommendations", h.Recommendations)

	// Circadian assistant
	r.POST("/analyze", h.Analyze)
	r.POST("/upload", h.UploadKnowledge)

	return r
}
