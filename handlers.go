package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"img2deck/models"
	"img2deck/pkg/deck"
	"img2deck/pkg/pipeline"
	"img2deck/pkg/pptx"
	"img2deck/pkg/preprocess"
	"img2deck/pkg/structure"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/decks", createDeckHandler)
	authGroup.GET("/decks", listDecksHandler)
	authGroup.GET("/decks/:id", getDeckHandler)
	authGroup.GET("/decks/:id/file", downloadDeckHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	usernameVal, _ := c.Get("username")
	if usernameVal == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": usernameVal.(string)})
}

// getUserFromContext fetches the currently authenticated user using the username set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	var user models.User
	if err := db.Where("username = ?", unameVal.(string)).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Username, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName(user),
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "refresh_token": refreshToken})
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	h := sha256.Sum256([]byte(token))
	rt := models.RefreshToken{UserID: userID, TokenHash: hex.EncodeToString(h[:]), ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName(user),
		"exp":      time.Now().Add(15 * time.Minute).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// createDeckHandler accepts a multipart batch of images plus pipeline
// options, runs the conversion, and records the job. Per-image failures are
// recorded and never fail the request; only setup problems are 4xx.
func createDeckHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no images provided"})
		return
	}

	style := pptx.DefaultStyle()
	if v := c.PostForm("font_name"); v != "" {
		style.FontName = v
	}
	if v := c.PostForm("title_size"); v != "" {
		style.TitleSize, _ = strconv.Atoi(v)
	}
	if v := c.PostForm("bullet_size"); v != "" {
		style.BulletSize, _ = strconv.Atoi(v)
	}
	if v := c.PostForm("accent_color"); v != "" {
		style.AccentColor = v
	}
	style.Widescreen = c.PostForm("wide") == "true"
	builder, err := pptx.New(style)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := pipeline.Options{
		Lang:          "vie",
		FallbackLang:  "eng",
		TitleFrom:     structure.TitleFirstLine,
		Preprocess:    preprocess.DefaultConfig(),
		ImageFallback: c.PostForm("image_fallback") == "true",
		Timeout:       60 * time.Second,
	}
	if v := c.PostForm("lang"); v != "" {
		opts.Lang = v
	}
	if v := c.PostForm("fallback_lang"); v != "" {
		opts.FallbackLang = v
	}
	if v := c.PostForm("title_from"); v != "" {
		if v != string(structure.TitleFirstLine) && v != string(structure.TitleFilename) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title_from must be first-line or filename"})
			return
		}
		opts.TitleFrom = structure.TitleFrom(v)
	}
	if c.PostForm("no_preprocess") == "true" {
		opts.Preprocess = preprocess.Config{}
	}

	// Save the uploaded batch under a per-job directory.
	jobDir := filepath.Join(deckBaseDir(), fmt.Sprintf("job-%d", time.Now().UnixNano()))
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	var inputs []string
	for _, f := range files {
		dst := filepath.Join(jobDir, filepath.Base(f.Filename))
		if err := c.SaveUploadedFile(f, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
			return
		}
		inputs = append(inputs, dst)
	}

	d, summary := pipeline.Run(c.Request.Context(), inputs, opts)
	dropped := pipeline.Render(d, builder)
	summary.ImageSlides -= len(dropped)
	summary.Skipped += len(dropped)

	outPath := filepath.Join(jobDir, "deck.pptx")
	if err := builder.Save(outPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write deck"})
		return
	}

	job := models.DeckJob{
		UserID:        user.ID,
		OutputPath:    outPath,
		Lang:          opts.Lang,
		FallbackLang:  opts.FallbackLang,
		TitleFrom:     string(opts.TitleFrom),
		ImageFallback: opts.ImageFallback,
		Widescreen:    style.Widescreen,
		TotalImages:   summary.Total,
		TextSlides:    summary.TextSlides,
		ImageSlides:   summary.ImageSlides,
		Skipped:       summary.Skipped,
		Slides:        slideRecords(inputs, d, summary),
	}
	if err := db.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           job.ID,
		"total":        summary.Total,
		"text_slides":  summary.TextSlides,
		"image_slides": summary.ImageSlides,
		"skipped":      summary.Skipped,
	})
}

func listDecksHandler(c *gin.Context) {
	role, _ := c.Get("role")
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var jobs []models.DeckJob
	q := db.Model(&models.DeckJob{})
	if role != "administrator" {
		q = q.Where("user_id = ?", user.ID)
	}
	if err := q.Order("id desc").Limit(100).Find(&jobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// loadOwnedJob fetches a job when the caller owns it or is an administrator.
func loadOwnedJob(c *gin.Context) (*models.DeckJob, bool) {
	role, _ := c.Get("role")
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	var job models.DeckJob
	if err := db.Preload("Slides").First(&job, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	if role != "administrator" && job.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return &job, true
}

func getDeckHandler(c *gin.Context) {
	if job, ok := loadOwnedJob(c); ok {
		c.JSON(http.StatusOK, job)
	}
}

func downloadDeckHandler(c *gin.Context) {
	job, ok := loadOwnedJob(c)
	if !ok {
		return
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "deck file missing"})
		return
	}
	c.FileAttachment(job.OutputPath, filepath.Base(job.OutputPath))
}

// slideRecords reconstructs per-input outcomes from the ordered deck and the
// skip list. The deck preserves input order, so skipped inputs are the only
// gaps to fill while walking both sequences together.
func slideRecords(inputs []string, d deck.Deck, summary deck.Summary) []models.SlideRecord {
	skipped := map[string]int{}
	for _, n := range summary.SkippedNames {
		skipped[n]++
	}
	records := make([]models.SlideRecord, 0, len(inputs))
	si := 0
	for pos, in := range inputs {
		name := pipeline.DisplayName(in)
		rec := models.SlideRecord{SourceName: name, Position: pos}
		if skipped[name] > 0 {
			skipped[name]--
			rec.Kind = "skipped"
		} else if si < len(d.Slides) {
			s := d.Slides[si]
			si++
			rec.Title = s.Title
			if s.Kind == deck.TextSlide {
				rec.Kind = "text"
				rec.Bullets = len(s.Bullets)
			} else {
				rec.Kind = "image"
			}
		} else {
			rec.Kind = "skipped"
		}
		records = append(records, rec)
	}
	return records
}
