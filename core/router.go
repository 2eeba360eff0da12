package core

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRouter constructs the Gin engine with routes wired. Every route outside
// the public prefixes sits behind AuthMiddleware.
func NewRouter(cfg Config, creds AdminCredentials, works WorkRepository, events EventRepository, views *ViewCounter, storage *Storage, db *pgxpool.Pool, redisClient RedisClientRaw) *gin.Engine {
	startedAt := time.Now()
	r := gin.Default()

	r.Use(AuthMiddleware(creds))

	authService := NewAuthService(creds)

	api := r.Group("/api")
	{
		api.POST("/login", func(c *gin.Context) {
			username, password, err := loginCredentialsFromRequest(c)
			if err != nil {
				respondAuthError(c, http.StatusBadRequest, "リクエストの形式が正しくありません。")
				return
			}
			if username == "" || password == "" {
				respondAuthError(c, http.StatusBadRequest, "ユーザー名とパスワードを入力してください。")
				return
			}

			payload, err := authService.Login(username, password)
			if err != nil {
				respondAuthError(c, http.StatusUnauthorized, "ユーザー名またはパスワードが正しくありません。")
				return
			}

			token := EncodeSessionToken(payload)
			http.SetCookie(c.Writer, NewSessionCookie(token, time.Now()))
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		api.POST("/logout", func(c *gin.Context) {
			// Nothing to tear down server-side; just tell the client to forget.
			http.SetCookie(c.Writer, ClearSessionCookie())
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		// Cookie introspection for the frontend. Public prefix, but unlike the
		// gate it answers instead of redirecting.
		api.GET("/auth/session", func(c *gin.Context) {
			user, err := ResolveSession(c.Request, creds, time.Now())
			if err != nil {
				c.JSON(http.StatusOK, gin.H{"authenticated": false})
				return
			}
			c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
		})

		// Auth-exempt connectivity probe.
		api.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, CollectAPIStatus(c.Request.Context(), db, redisClient, startedAt))
		})

		api.GET("/works", func(c *gin.Context) {
			ctx := c.Request.Context()
			items, err := works.List(ctx)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "作品一覧の取得に失敗しました")
				return
			}
			if views != nil && len(items) > 0 {
				slugs := make([]string, len(items))
				for i := range items {
					slugs[i] = items[i].Slug
				}
				// View counts are display data; a redis hiccup must not break the listing.
				if counts, err := views.Snapshot(ctx, slugs); err == nil {
					for i := range items {
						items[i].ViewCount = counts[items[i].Slug]
					}
				}
			}
			c.JSON(http.StatusOK, gin.H{"works": items})
		})

		api.POST("/works/:slug/force-private", func(c *gin.Context) {
			if err := works.ForcePrivate(c.Request.Context(), c.Param("slug")); err != nil {
				respondWorkError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})

		api.POST("/works/:slug/restore", func(c *gin.Context) {
			if err := works.Restore(c.Request.Context(), c.Param("slug")); err != nil {
				respondWorkError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})

		api.POST("/works/:slug/view", func(c *gin.Context) {
			n, err := views.Increment(c.Request.Context(), c.Param("slug"))
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "閲覧数の更新に失敗しました")
				return
			}
			c.JSON(http.StatusOK, gin.H{"views": n})
		})

		api.GET("/events", func(c *gin.Context) {
			ctx := c.Request.Context()
			var (
				items []Event
				err   error
			)
			if c.Query("active") == "true" {
				items, err = events.ListActive(ctx, time.Now())
			} else {
				items, err = events.ListAll(ctx)
			}
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "イベント一覧の取得に失敗しました")
				return
			}
			c.JSON(http.StatusOK, gin.H{"events": items})
		})

		api.POST("/events", func(c *gin.Context) {
			in, ok := bindEventInput(c)
			if !ok {
				return
			}
			ev, err := events.Create(c.Request.Context(), in)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "イベントの作成に失敗しました")
				return
			}
			c.JSON(http.StatusCreated, ev)
		})

		api.GET("/events/:id", func(c *gin.Context) {
			id, ok := eventIDParam(c)
			if !ok {
				return
			}
			ev, err := events.Get(c.Request.Context(), id)
			if err != nil {
				respondEventError(c, err)
				return
			}
			c.JSON(http.StatusOK, ev)
		})

		api.PUT("/events/:id", func(c *gin.Context) {
			id, ok := eventIDParam(c)
			if !ok {
				return
			}
			in, ok := bindEventInput(c)
			if !ok {
				return
			}
			ev, err := events.Update(c.Request.Context(), id, in)
			if err != nil {
				respondEventError(c, err)
				return
			}
			c.JSON(http.StatusOK, ev)
		})

		api.DELETE("/events/:id", func(c *gin.Context) {
			id, ok := eventIDParam(c)
			if !ok {
				return
			}
			ev, err := events.Get(c.Request.Context(), id)
			if err != nil {
				respondEventError(c, err)
				return
			}
			if err := events.Delete(c.Request.Context(), id); err != nil {
				respondEventError(c, err)
				return
			}
			// Clean up the detached image, best-effort.
			if storage != nil && ev.ImageURL != "" {
				if key := ExtractKey(ev.ImageURL); key != "" {
					_ = storage.Delete(c.Request.Context(), key)
				}
			}
			c.Status(http.StatusNoContent)
		})

		api.POST("/uploads", func(c *gin.Context) {
			if storage == nil {
				respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "ストレージが設定されていません")
				return
			}
			file, err := c.FormFile("file")
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "画像ファイルが必要です")
				return
			}
			contentType := file.Header.Get("Content-Type")
			if err := ValidateUpload(file.Size, contentType, cfg.MaxUploadBytes); err != nil {
				switch {
				case errors.Is(err, ErrUploadTooLarge):
					respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "画像ファイルのサイズが大きすぎます（最大5MB）")
				default:
					respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "サポートされていない画像形式です（JPG、PNG、GIF、WebPのみ）")
				}
				return
			}

			f, err := file.Open()
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "アップロードに失敗しました")
				return
			}
			defer f.Close()

			key := NewObjectKey("event-images", file.Filename)
			if err := storage.Upload(c.Request.Context(), key, f, contentType); err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "アップロードに失敗しました")
				return
			}
			c.JSON(http.StatusCreated, gin.H{"key": key, "url": storage.URL(key)})
		})

		api.DELETE("/uploads/*key", func(c *gin.Context) {
			if storage == nil {
				respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "ストレージが設定されていません")
				return
			}
			key := strings.TrimPrefix(c.Param("key"), "/")
			if key == "" {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "キーが指定されていません")
				return
			}
			if err := storage.Delete(c.Request.Context(), key); err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "削除に失敗しました")
				return
			}
			c.Status(http.StatusNoContent)
		})
	}

	return r
}

// loginCredentialsFromRequest dispatches on Content-Type: JSON bodies are
// bound, everything else (urlencoded and multipart forms) goes through the
// form parser.
func loginCredentialsFromRequest(c *gin.Context) (username, password string, err error) {
	if strings.Contains(c.ContentType(), "application/json") {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", "", err
		}
		return req.Username, req.Password, nil
	}
	return c.PostForm("username"), c.PostForm("password"), nil
}

func respondWorkError(c *gin.Context, err error) {
	if errors.Is(err, ErrWorkNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "作品が見つかりません")
		return
	}
	respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "作品の更新に失敗しました")
}

func respondEventError(c *gin.Context, err error) {
	if errors.Is(err, ErrEventNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "イベントが見つかりません")
		return
	}
	respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "イベントの処理に失敗しました")
}

func eventIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "イベントIDが正しくありません")
		return 0, false
	}
	return id, true
}

func bindEventInput(c *gin.Context) (EventInput, bool) {
	var in EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
		return EventInput{}, false
	}
	if strings.TrimSpace(in.Title) == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "タイトルは必須です")
		return EventInput{}, false
	}
	if !in.EndsAt.IsZero() && in.EndsAt.Before(in.StartsAt) {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "終了日時は開始日時より後にしてください")
		return EventInput{}, false
	}
	return in, true
}
