package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"studybuddy/internal/apperr"
	"studybuddy/internal/auth"
	"studybuddy/internal/rag"
	"studybuddy/internal/userstore"
)

// Handler holds the constructed services the endpoints call into.
type Handler struct {
	timetable   *rag.Timetable
	circadian   *rag.Circadian
	google      *auth.Client
	users       *userstore.Store // nil when no database is configured
	frontendURL string
}

func NewHandler(timetable *rag.Timetable, circadian *rag.Circadian, google *auth.Client, users *userstore.Store, frontendURL string) *Handler {
	return &Handler{
		timetable:   timetable,
		circadian:   circadian,
		google:      google,
		users:       users,
		frontendURL: frontendURL,
	}
}

// writeError is the single mapping from the error taxonomy to HTTP.
func writeError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// --- OAuth proxy ---

func (h *Handler) AuthURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"auth_url": h.google.AuthURL()})
}

// CallbackRedirect handles the browser leg of the OAuth flow. The
// caller is a browser mid-navigation, so every failure is encoded into
// the frontend redirect instead of an error page.
func (h *Handler) CallbackRedirect(c *gin.Context) {
	if errMsg := c.Query("error"); errMsg != "" {
		c.Redirect(http.StatusFound, auth.RedirectError(h.frontendURL, errMsg))
		return
	}

	ctx := c.Request.Context()
	tokens, err := h.google.Exchange(ctx, c.Query("code"))
	if err != nil {
		c.Redirect(http.StatusFound, auth.RedirectError(h.frontendURL, err.Error()))
		return
	}
	user, err := h.google.User(ctx, tokens.AccessToken)
	if err != nil {
		c.Redirect(http.StatusFound, auth.RedirectError(h.frontendURL, err.Error()))
		return
	}
	h.recordLogin(c, user)
	c.Redirect(http.StatusFound, auth.RedirectSuccess(h.frontendURL, tokens, user))
}

type callbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// CallbackJSON is the API-client leg of the same exchange.
func (h *Handler) CallbackJSON(c *gin.Context) {
	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}

	ctx := c.Request.Context()
	tokens, err := h.google.Exchange(ctx, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	user, err := h.google.User(ctx, tokens.AccessToken)
	if err != nil {
		writeError(c, err)
		return
	}
	h.recordLogin(c, user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"tokens":  tokens,
	})
}

func (h *Handler) UserInfo(c *gin.Context) {
	token := c.Query("access_token")
	if token == "" {
		writeError(c, apperr.New(apperr.Validation, "access_token is required"))
		return
	}
	user, err := h.google.User(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// recordLogin upserts the profile when a database is configured; a
// failed upsert never blocks the login itself.
func (h *Handler) recordLogin(c *gin.Context, user *auth.UserInfo) {
	if h.users == nil {
		return
	}
	if err := h.users.Upsert(c.Request.Context(), user); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("profile upsert failed")
	}
}

// --- Timetable assistant ---

type queryRequest struct {
	Query string `json:"query" binding:"required"`
}

func (h *Handler) GenerateTimetable(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}
	res, err := h.timetable.Generate(c.Request.Context(), req.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timetable": res.Timetable, "timetable_id": res.TimetableID})
}

func (h *Handler) IdentifyFrogs(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}
	analysis, err := h.timetable.IdentifyFrogs(c.Request.Context(), req.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"frog_analysis": analysis,
		"methodology":   "Eat That Frog ABCDE Method",
	})
}

func readUpload(c *gin.Context) (string, []byte, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", nil, apperr.Wrap(apperr.Validation, err, "file is required")
	}
	data, err := readFile(file)
	if err != nil {
		return "", nil, err
	}
	return file.Filename, data, nil
}

func readFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, err, "opening upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, err, "reading upload")
	}
	return data, nil
}

func (h *Handler) UploadStudyMaterial(c *gin.Context) {
	filename, data, err := readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	subject := c.DefaultPostForm("subject", "general")

	n, err := h.timetable.UploadMaterial(c.Request.Context(), filename, subject, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully uploaded " + filename + " with " + strconv.Itoa(n) + " chunks",
		"subject": subject,
	})
}

type noteRequest struct {
	Note    string `json:"note" binding:"required"`
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
}

func (h *Handler) AddStudyNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}
	if _, err := h.timetable.AddNote(c.Request.Context(), req.Note, req.Subject, req.Topic); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Study note added successfully",
		"subject": req.Subject,
		"topic":   req.Topic,
	})
}

func (h *Handler) SearchMaterials(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		writeError(c, apperr.New(apperr.Validation, "query is required"))
		return
	}
	n, err := strconv.Atoi(c.DefaultQuery("n_results", "5"))
	if err != nil {
		writeError(c, apperr.Wrap(apperr.Validation, err, "n_results must be an integer"))
		return
	}

	results, err := h.timetable.SearchMaterials(c.Request.Context(), query, n)
	if err != nil {
		writeError(c, err)
		return
	}
	docs := make([]string, len(results))
	metadata := make([]map[string]string, len(results))
	distances := make([]float32, len(results))
	for i, item := range results {
		docs[i] = item.Text
		metadata[i] = item.Metadata
		distances[i] = item.Distance
	}
	c.JSON(http.StatusOK, gin.H{
		"query":     query,
		"results":   docs,
		"metadata":  metadata,
		"distances": distances,
	})
}

type rateRequest struct {
	TimetableID string `json:"timetable_id" binding:"required"`
	Rating      int    `json:"rating"`
	Feedback    string `json:"feedback"`
}

func (h *Handler) RateTimetable(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}
	if _, err := h.timetable.Rate(c.Request.Context(), req.TimetableID, req.Rating, req.Feedback); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Thank you! Rated " + strconv.Itoa(req.Rating) + "/5 stars",
		"timetable_id": req.TimetableID,
	})
}

type completeFrogRequest struct {
	TaskName         string `json:"task_name" binding:"required"`
	CompletionTime   string `json:"completion_time"`
	DifficultyActual int    `json:"difficulty_actual"`
	Notes            string `json:"notes"`
}

func (h *Handler) CompleteFrog(c *gin.Context) {
	var req completeFrogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}
	if _, err := h.timetable.CompleteFrog(c.Request.Context(), req.TaskName, req.CompletionTime, req.DifficultyActual, req.Notes); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Congratulations! You ate your frog: '" + req.TaskName + "'",
		"momentum":    "You're building great productivity habits!",
		"next_action": "What's your next most important task?",
	})
}

func (h *Handler) DailyFrogReport(c *gin.Context) {
	completions, err := h.timetable.FrogReport(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	message := "Time to identify and eat your first frog!"
	if len(completions) > 0 {
		message = "Great job eating your frogs!"
	}
	c.JSON(http.StatusOK, gin.H{
		"date":                     time.Now().Format("2006-01-02"),
		"frogs_completed_recently": len(completions),
		"recent_frog_completions":  completions.Texts(),
		"momentum_message":         message,
	})
}

type preferenceRequest struct {
	PreferenceType  string `json:"preference_type" binding:"required"`
	PreferenceValue string `json:"preference_value" binding:"required"`
	Description     string `json:"description"`
}

func (h *Handler) AddUserPreference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}
	if _, err := h.timetable.AddPreference(c.Request.Context(), req.PreferenceType, req.PreferenceValue, req.Description); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Preference saved",
		"type":    req.PreferenceType,
		"value":   req.PreferenceValue,
	})
}

func (h *Handler) MemoryStats(c *gin.Context) {
	stats := h.timetable.MemoryStats(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"timetable_memory_count": stats.TimetableCount,
		"study_materials_count":  stats.MaterialsCount,
		"recent_timetables":      stats.Recent.Texts(),
	})
}

func (h *Handler) Recommendations(c *gin.Context) {
	recommendations, err := h.timetable.Recommendations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"personalized_etf_recommendations": recommendations,
		"based_on":                         "Your productivity patterns + Eat That Frog principles",
	})
}

// --- Circadian assistant ---

type analyzeRequest struct {
	Text        string `json:"text" binding:"required"`
	ScreenTime  int    `json:"screen_time"`
	CurrentTime string `json:"current_time"`
}

func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Validation, err, "invalid request body"))
		return
	}
	analysis, err := h.circadian.Analyze(c.Request.Context(), req.Text, req.ScreenTime, req.CurrentTime)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recommendation": analysis.Recommendation,
		"sources":        analysis.Sources,
	})
}

func (h *Handler) UploadKnowledge(c *gin.Context) {
	filename, data, err := readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	stored, total, err := h.circadian.Ingest(c.Request.Context(), filename, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":                       "Successfully processed and stored " + filename,
		"chunks":                        stored,
		"total_documents_in_collection": total,
		"collection_name":               rag.CircadianCollection,
	})
}
