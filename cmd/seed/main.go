package main

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/database"
	"github.com/taskhive/taskhive-server/internal/model"
)

// Seeds the database with the admin account, the orientation curriculum and
// a starter task catalog. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	admin, err := seedAdmin(db)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	if err := seedOrientationTasks(db); err != nil {
		log.Fatalf("Failed to seed orientation tasks: %v", err)
	}
	if err := seedCatalogTasks(db); err != nil {
		log.Fatalf("Failed to seed catalog tasks: %v", err)
	}
	if err := seedWelcomeNotification(db, admin.ID); err != nil {
		log.Fatalf("Failed to seed notification: %v", err)
	}

	log.Println("Seeding complete")
}

func seedAdmin(db *gorm.DB) (*model.User, error) {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@taskhive.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "change-me-now"
	}

	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Println("Admin user already exists")
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tier := model.TierVIP
	expiry := time.Now().Add(365 * 24 * time.Hour)
	admin := &model.User{
		Name:               "System Administrator",
		Email:              email,
		PasswordHash:       string(hash),
		Gender:             model.GenderGeek,
		Role:               model.RoleAdmin,
		SubscriptionTier:   &tier,
		SubscriptionExpiry: &expiry,
		ReferralCode:       strings.ToUpper(uuid.NewString()[:8]),
		ApprovalStatus:     model.ApprovalApproved,
		OrientationStatus:  datatypes.NewJSONType(completedOrientation()),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(admin).Error; err != nil {
			return err
		}
		return tx.Create(&model.Wallet{UserID: admin.ID}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Admin user created: %s", email)
	return admin, nil
}

func completedOrientation() model.OrientationStatus {
	done := model.CategoryProgress{CompletedTasks: []int64{}, IsCompleted: true}
	return model.OrientationStatus{
		Main:             done,
		Social:           done,
		Surveys:          done,
		Testing:          done,
		AI:               done,
		OverallCompleted: true,
	}
}

func seedOrientationTasks(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Task{}).Where("is_orientation = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Orientation tasks already exist")
		return nil
	}

	tasks := []model.Task{
		orientationTask("Welcome to TaskHive", "Learn about the platform and how earning works", model.CategoryMain, "https://taskhive.example.com/welcome", "5.00", 180),
		orientationTask("Platform Navigation", "Explore the dashboard and the main features", model.CategoryMain, "https://taskhive.example.com/navigation", "5.00", 150),
		orientationTask("Social Media Engagement Basics", "How to engage effectively with social content", model.CategorySocial, "https://facebook.com/taskhive", "7.50", 200),
		orientationTask("Content Sharing Guidelines", "Best practices for sharing and promoting content", model.CategorySocial, "https://twitter.com/taskhive", "7.50", 180),
		orientationTask("Market Research Introduction", "Participating in surveys and polls effectively", model.CategorySurveys, "https://surveys.taskhive.example.com/intro", "6.00", 240),
		orientationTask("Survey Best Practices", "Providing quality responses in market research", model.CategorySurveys, "https://surveys.taskhive.example.com/best-practices", "6.00", 200),
		orientationTask("App Testing Fundamentals", "Mobile app testing and bug reporting basics", model.CategoryTesting, "https://testing.taskhive.example.com/mobile-intro", "8.00", 300),
		orientationTask("Website Testing Guide", "Testing websites and reporting usability issues", model.CategoryTesting, "https://testing.taskhive.example.com/web-intro", "8.00", 280),
		orientationTask("AI Training Basics", "Helping train models through data labeling", model.CategoryAI, "https://ai.taskhive.example.com/training-intro", "10.00", 360),
		orientationTask("Data Quality Guidelines", "Providing high quality training data", model.CategoryAI, "https://ai.taskhive.example.com/quality-guidelines", "10.00", 320),
	}

	if err := db.Create(&tasks).Error; err != nil {
		return err
	}
	log.Printf("Created %d orientation tasks", len(tasks))
	return nil
}

func orientationTask(title, description string, category model.Category, url, reward string, minDuration int) model.Task {
	return model.Task{
		Title:         title,
		Description:   description,
		Category:      category,
		URL:           &url,
		Reward:        decimal.RequireFromString(reward),
		MinTier:       model.TierMember,
		MinDuration:   minDuration,
		IsActive:      true,
		IsOrientation: true,
	}
}

func seedCatalogTasks(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Task{}).Where("is_orientation = ?", false).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Catalog tasks already exist")
		return nil
	}

	tasks := []model.Task{
		catalogTask("Social Media Post Engagement", "Like, share and comment on sponsored posts", model.CategorySocial, "https://facebook.com/sponsored-post-1", "12.50", model.TierSilver, 300),
		catalogTask("Mobile App Beta Testing", "Test new app features and report bugs", model.CategoryTesting, "https://testflight.apple.com/beta-app-1", "25.00", model.TierBronze, 600),
		catalogTask("AI Image Labeling", "Label images to help train models", model.CategoryAI, "https://ai.taskhive.example.com/image-labeling", "30.00", model.TierDiamond, 900),
		catalogTask("Consumer Survey Participation", "Complete detailed market research surveys", model.CategorySurveys, "https://surveys.taskhive.example.com/consumer-research", "15.00", model.TierSilver, 450),
	}

	if err := db.Create(&tasks).Error; err != nil {
		return err
	}
	log.Printf("Created %d catalog tasks", len(tasks))
	return nil
}

func catalogTask(title, description string, category model.Category, url, reward string, minTier model.Tier, minDuration int) model.Task {
	return model.Task{
		Title:       title,
		Description: description,
		Category:    category,
		URL:         &url,
		Reward:      decimal.RequireFromString(reward),
		MinTier:     minTier,
		MinDuration: minDuration,
		IsActive:    true,
	}
}

func seedWelcomeNotification(db *gorm.DB, adminID int64) error {
	var count int64
	if err := db.Model(&model.Notification{}).Where("user_id = ?", adminID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&model.Notification{
		UserID:  adminID,
		Title:   "Welcome to TaskHive Admin",
		Message: "Your admin account is ready. You can now manage users, tasks and withdrawals.",
		Type:    model.NotificationSystem,
	}).Error
}
