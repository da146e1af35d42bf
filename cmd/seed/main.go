package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/civicsync/civicsync/internal/config"
	"github.com/civicsync/civicsync/internal/db"
	"github.com/civicsync/civicsync/internal/models"
)

// UserData represents the structure of users in the JSON file
type UserData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// IssueData represents the structure of issues in the JSON file
type IssueData struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Reporter    string   `json:"reporter"`
}

// JSONData represents the structure of the seed file
type JSONData struct {
	Users  []UserData  `json:"users"`
	Issues []IssueData `json:"issues"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(database); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Seeding database with sample data...")
	if err := seed(database); err != nil {
		log.Fatalf("Error seeding database: %v", err)
	}

	log.Println("Database seeding completed successfully")
}

func seed(database *gorm.DB) error {
	path := os.Getenv("SEED_FILE")
	if path == "" {
		path = "data/seed.json"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var data JSONData
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}

	usersByEmail := make(map[string]models.User)
	for _, u := range data.Users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Error hashing password for %s: %v", u.Email, err)
			continue
		}

		role := models.RoleCitizen
		if u.Role == string(models.RoleAuthority) {
			role = models.RoleAuthority
		}

		user := models.User{
			Name:     u.Name,
			Email:    u.Email,
			Password: string(hashed),
			Role:     role,
		}

		var existing models.User
		if err := database.Where("email = ?", user.Email).First(&existing).Error; err == nil {
			log.Printf("User already exists: %s", user.Email)
			usersByEmail[user.Email] = existing
			continue
		}
		if err := database.Create(&user).Error; err != nil {
			log.Printf("Error creating user %s: %v", user.Email, err)
			continue
		}
		log.Printf("Created user: %s (%s)", user.Email, user.Role)
		usersByEmail[user.Email] = user
	}

	for _, i := range data.Issues {
		reporter, ok := usersByEmail[i.Reporter]
		if !ok {
			log.Printf("Skipping issue %q: unknown reporter %s", i.Title, i.Reporter)
			continue
		}
		issue := models.Issue{
			UserID:      reporter.ID,
			Title:       i.Title,
			Description: i.Description,
			Category:    models.IssueCategory(i.Category),
			Status:      models.StatusPending,
			Location:    i.Location,
			Latitude:    i.Latitude,
			Longitude:   i.Longitude,
		}
		if !models.ValidCategory(issue.Category) {
			log.Printf("Skipping issue %q: unknown category %s", i.Title, i.Category)
			continue
		}
		if err := database.Create(&issue).Error; err != nil {
			log.Printf("Error creating issue %q: %v", i.Title, err)
			continue
		}
		log.Printf("Created issue: %s", issue.Title)
	}

	return nil
}
