package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"getfit/internal/config"
	"getfit/internal/database"
	"getfit/internal/domain"
	"getfit/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM class_reviews")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM class_schedules")
	db.Exec("DELETE FROM classes")
	db.Exec("DELETE FROM class_categories")
	db.Exec("DELETE FROM refresh_tokens")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	classes := repository.NewClassRepository(db)
	schedules := repository.NewScheduleRepository(db)
	bookings := repository.NewBookingRepository(db)

	log.Println("Creating users...")

	admin := seedUser(ctx, users, "admin@getfit.app", "admin123", domain.RoleAdmin, "Alina", "Bek")
	_ = admin

	instructors := []*domain.User{
		seedUser(ctx, users, "maria.yoga@getfit.app", "instructor123", domain.RoleInstructor, "Maria", "Serik"),
		seedUser(ctx, users, "daniyar.hiit@getfit.app", "instructor123", domain.RoleInstructor, "Daniyar", "Omar"),
	}
	instructors[0].Bio = "Certified Hatha and Vinyasa teacher, 10 years of practice."
	instructors[1].Bio = "Former track athlete, HIIT and functional training coach."
	for _, ins := range instructors {
		if err := users.Update(ctx, ins); err != nil {
			log.Fatal(err)
		}
	}

	members := make([]*domain.User, 0, 5)
	for i := 1; i <= 5; i++ {
		members = append(members, seedUser(ctx, users,
			fmt.Sprintf("member%d@getfit.app", i), "member123",
			domain.RoleUser, fmt.Sprintf("Member%d", i), "Test"))
	}

	log.Println("Creating categories...")

	yoga := seedCategory(ctx, categories, "Yoga", "Flexibility, balance and breath work", "🧘", "#7C3AED", 1)
	hiit := seedCategory(ctx, categories, "HIIT", "High intensity interval training", "🔥", "#DC2626", 2)
	strength := seedCategory(ctx, categories, "Strength", "Weights and resistance training", "🏋️", "#2563EB", 3)
	_ = strength

	log.Println("Creating classes...")

	price := 4500.0
	morningYoga := &domain.Class{
		Name:            "Morning Vinyasa Flow",
		Description:     "A flowing sequence to wake the body up. Suitable for everyone with some practice.",
		CategoryID:      yoga.ID,
		InstructorID:    instructors[0].ID,
		Duration:        60,
		DifficultyLevel: domain.DifficultyAllLevels,
		MaxCapacity:     20,
		LocationType:    domain.LocationInPerson,
		LocationName:    "Studio A",
		LocationAddress: "12 Abay Ave",
		Requirements:    "Bring your own mat",
		Price:           &price,
		Currency:        "KZT",
		IsActive:        true,
		IsFeatured:      true,
	}
	if err := classes.Create(ctx, morningYoga); err != nil {
		log.Fatal(err)
	}

	hiitPrice := 5000.0
	lunchHIIT := &domain.Class{
		Name:            "Lunch Break HIIT",
		Description:     "45 minutes of full-body intervals. Expect to sweat.",
		CategoryID:      hiit.ID,
		InstructorID:    instructors[1].ID,
		Duration:        45,
		DifficultyLevel: domain.DifficultyIntermediate,
		MaxCapacity:     12,
		LocationType:    domain.LocationHybrid,
		LocationName:    "Studio B",
		Price:           &hiitPrice,
		Currency:        "KZT",
		IsActive:        true,
	}
	if err := classes.Create(ctx, lunchHIIT); err != nil {
		log.Fatal(err)
	}

	log.Println("Creating schedules...")

	now := time.Now()
	for day := 1; day <= 7; day++ {
		start := time.Date(now.Year(), now.Month(), now.Day(), 7, 30, 0, 0, time.Local).AddDate(0, 0, day)
		schedule := &domain.ClassSchedule{
			ClassID:         morningYoga.ID,
			InstructorID:    instructors[0].ID,
			StartTime:       start,
			EndTime:         start.Add(60 * time.Minute),
			MaxCapacity:     morningYoga.MaxCapacity,
			WaitlistEnabled: true,
			RecurringType:   domain.RecurringDaily,
		}
		if err := schedules.Create(ctx, schedule); err != nil {
			log.Fatal(err)
		}
	}

	hiitStart := time.Date(now.Year(), now.Month(), now.Day(), 12, 15, 0, 0, time.Local).AddDate(0, 0, 2)
	hiitSchedule := &domain.ClassSchedule{
		ClassID:         lunchHIIT.ID,
		InstructorID:    instructors[1].ID,
		StartTime:       hiitStart,
		EndTime:         hiitStart.Add(45 * time.Minute),
		MaxCapacity:     2, // small room this week
		WaitlistEnabled: true,
	}
	if err := schedules.Create(ctx, hiitSchedule); err != nil {
		log.Fatal(err)
	}

	log.Println("Creating bookings...")

	for i, member := range members[:3] {
		b := &domain.Booking{UserID: member.ID, ScheduleID: hiitSchedule.ID}
		err := bookings.CreateConfirmed(ctx, b)
		if err == repository.ErrNoSeatAvailable {
			err = bookings.CreateWaitlisted(ctx, b)
		}
		if err != nil {
			log.Fatal(err)
		}
		if b.IsWaitlisted {
			log.Printf("member %d waitlisted at position %d", i+1, *b.WaitlistPosition)
		}
	}

	log.Println("Seed complete.")
	log.Println("  admin:      admin@getfit.app / admin123")
	log.Println("  instructor: maria.yoga@getfit.app / instructor123")
	log.Println("  member:     member1@getfit.app / member123")
}

func seedUser(ctx context.Context, repo *repository.UserRepository, email, password string, role domain.UserRole, first, last string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    first,
		LastName:     last,
		IsActive:     true,
		IsVerified:   true,
		DateJoined:   time.Now(),
	}
	if err := repo.Create(ctx, u); err != nil {
		log.Fatal(err)
	}
	return u
}

func seedCategory(ctx context.Context, repo *repository.CategoryRepository, name, desc, icon, color string, order int) *domain.ClassCategory {
	c := &domain.ClassCategory{
		Name:        name,
		Description: desc,
		Icon:        icon,
		Color:       color,
		IsActive:    true,
		SortOrder:   order,
	}
	if err := repo.Create(ctx, c); err != nil {
		log.Fatal(err)
	}
	return c
}
