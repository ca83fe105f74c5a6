package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/evgkirov/bboard/internal/auth"
	"github.com/evgkirov/bboard/internal/config"
	"github.com/evgkirov/bboard/internal/handlers"
	"github.com/evgkirov/bboard/internal/images"
	"github.com/evgkirov/bboard/internal/store"
)

func main() {
	// Initialize environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	// Chi
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Session store
	maxAge := 86400 * 30
	isProd := false
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionKey))
	sessionStore.MaxAge(maxAge)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = isProd
	gothic.Store = sessionStore

	// Optional Google sign-in
	if cfg.GoogleKey != "" {
		goth.UseProviders(google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.GoogleCallback))
	}

	// Database connection
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	st := store.New(db)

	storage, err := buildStorage(cfg)
	if err != nil {
		log.Fatal("storage:", err)
	}

	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(from, to int) []int {
			out := make([]int, 0, to-from+1)
			for i := from; i <= to; i++ {
				out = append(out, i)
			}
			return out
		},
		"imageURL": storage.URL,
	}
	tmpl, err := template.New("bboard").Funcs(funcs).ParseGlob("web/templates/*.html")
	if err != nil {
		log.Fatal("templates:", err)
	}

	signer := auth.NewSigner(cfg.TokenSecret, 72*time.Hour)
	h := handlers.New(cfg, st, sessionStore, signer, storage, tmpl)

	// Session is optional everywhere; /profile requires it.
	r.Use(auth.Middleware(sessionStore, false))

	r.Get("/", h.Index)
	r.Get("/rubric/{rubricID}", h.RubricListings)
	r.Get("/rubric/{rubricID}/{listingID}", h.ListingDetail)
	r.Post("/rubric/{rubricID}/{listingID}", h.ListingDetail)

	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/activate/{token}", h.Activate)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	if cfg.GoogleKey != "" {
		r.Get("/auth/{provider}/callback", h.OAuthCallback)
		r.Post("/auth/{provider}", h.OAuthBegin)
	}

	r.Route("/profile", func(r chi.Router) {
		r.Use(auth.Middleware(sessionStore, true))
		r.Use(httprate.Limit(
			20,
			1*time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		))
		r.Get("/", h.Profile)
		r.Get("/edit", h.ProfileEditForm)
		r.Post("/edit", h.ProfileEdit)
		r.Get("/password", h.PasswordForm)
		r.Post("/password", h.PasswordChange)
		r.Get("/delete", h.ProfileDeleteForm)
		r.Post("/delete", h.ProfileDelete)
		r.Get("/ads/add", h.ListingAddForm)
		r.Post("/ads/add", h.ListingAdd)
		r.Get("/ads/{listingID}", h.ProfileListingDetail)
		r.Get("/ads/{listingID}/edit", h.ListingEditForm)
		r.Post("/ads/{listingID}/edit", h.ListingEdit)
		r.Get("/ads/{listingID}/delete", h.ListingDeleteForm)
		r.Post("/ads/{listingID}/delete", h.ListingDelete)
	})

	// Serve locally stored media when no bucket is configured.
	if cfg.AccountID == "" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir)))
		r.Get("/media/*", fs.ServeHTTP)
	}

	log.Println("Starting server on", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, r))
}

// buildStorage connects to the R2 bucket, or falls back to the local media
// directory when no account is configured.
func buildStorage(cfg *config.Config) (images.Storage, error) {
	if cfg.AccountID == "" {
		log.Println("no ACCOUNT_ID set, storing media under", cfg.MediaDir)
		return images.NewDiskStorage(cfg.MediaDir), nil
	}

	// Create custom HTTP client with TLS config
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
			CipherSuites: []uint16{
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
				tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			},
		},
	}
	httpClient := &http.Client{Transport: tr}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithHTTPClient(httpClient),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})
	return images.NewR2Storage(client, cfg.BucketName, cfg.PublicURL), nil
}
