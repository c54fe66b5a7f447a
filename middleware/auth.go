package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Define context keys
type contextKey string

const UserIDKey contextKey = "user_id"

var firebaseAuth *auth.Client

// InitializeFirebase initializes the Firebase Admin SDK. Credentials come
// from FIREBASE_SERVICE_ACCOUNT_JSON or FIREBASE_SERVICE_ACCOUNT_BASE64;
// with neither present the server runs in development mode with auth
// checks disabled.
func InitializeFirebase(projectID string) error {
	log.Println("Starting Firebase initialization...")

	var credentials []byte

	if raw := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); raw != "" {
		log.Println("Using JSON Firebase credentials from environment")
		credentials = []byte(raw)
	} else if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64"); encoded != "" {
		log.Println("Using base64-encoded Firebase credentials from environment")
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			log.Printf("Error decoding base64 Firebase credentials: %v", err)
			return err
		}
		credentials = decoded
	}

	if credentials == nil {
		log.Println("No Firebase credentials found, running in development mode with auth checks disabled")
		return nil
	}

	opt := option.WithCredentialsJSON(credentials)
	app, err := firebase.NewApp(context.Background(), &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		log.Printf("Error initializing Firebase app: %v", err)
		return err
	}

	firebaseAuth, err = app.Auth(context.Background())
	if err != nil {
		log.Printf("Error getting Firebase Auth client: %v", err)
		return err
	}

	log.Println("Firebase Admin SDK initialized successfully")
	return nil
}

// AuthMiddleware verifies Firebase JWT tokens from the Authorization header
// and puts the authenticated user id on the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Without an initialized Firebase client every request runs as a
		// fixed development user.
		if firebaseAuth == nil {
			ctx := context.WithValue(r.Context(), UserIDKey, devUserID())
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// Skip auth for OPTIONS requests (CORS preflight)
		if r.Method == "OPTIONS" {
			next.ServeHTTP(w, r)
			return
		}

		idToken := extractToken(r.Header.Get("Authorization"))
		if idToken == "" {
			http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
			return
		}

		token, err := verifyToken(idToken)
		if err != nil {
			log.Printf("Error verifying token: %v", err)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, token.UID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func devUserID() string {
	if id := os.Getenv("DEV_USER_ID"); id != "" {
		return id
	}
	return "dev-user-1"
}

// extractToken gets the token from the Authorization header
func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, "Bearer ")
	if len(parts) != 2 {
		return ""
	}

	return parts[1]
}

// verifyToken verifies the Firebase JWT token
func verifyToken(idToken string) (*auth.Token, error) {
	if firebaseAuth == nil {
		return nil, errors.New("Firebase auth client not initialized")
	}

	token, err := firebaseAuth.VerifyIDToken(context.Background(), idToken)
	if err != nil {
		return nil, fmt.Errorf("error verifying ID token: %w", err)
	}

	return token, nil
}

// GetUserIDFromContext retrieves the user ID from the request context
func GetUserIDFromContext(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
