package main

import (
	"context"
	"log"
	"time"

	"campusbook/internal/database"
	"campusbook/internal/domain"
	"campusbook/internal/modules/notification"
	"campusbook/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Seeds a local SQLite database with demo accounts and a few days of teacher
// availability so the API is usable out of the box.
func main() {
	db, err := database.Connect("campusbook.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Slot{},
		&domain.Appointment{},
		&domain.Message{},
		&notification.Notification{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM messages")
	db.Exec("DELETE FROM appointments")
	db.Exec("DELETE FROM slots")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	slots := repository.NewSlotRepository(db)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	accounts := []*domain.User{
		{Email: "admin@campus.edu", Name: "Site Admin", Role: domain.RoleAdmin},
		{Email: "a.turing@campus.edu", Name: "Alan Turing", Role: domain.RoleTeacher, Department: "Computer Science", Subject: "Algorithms", Office: "CS-214"},
		{Email: "g.hopper@campus.edu", Name: "Grace Hopper", Role: domain.RoleTeacher, Department: "Computer Science", Subject: "Compilers", Office: "CS-108"},
		{Email: "s.student@campus.edu", Name: "Sam Student", Role: domain.RoleStudent, Department: "Computer Science"},
		{Email: "r.reader@campus.edu", Name: "Riley Reader", Role: domain.RoleStudent, Department: "Mathematics"},
	}
	for _, u := range accounts {
		u.PasswordHash = string(hash)
		u.Active = true
		if err := users.Create(ctx, u); err != nil {
			log.Fatal("seed user failed:", err)
		}
		log.Printf("seeded user id=%d email=%s role=%s", u.ID, u.Email, u.Role)
	}

	// Publish the next five days of availability for each teacher.
	today := domain.NormalizeDate(time.Now())
	for _, u := range accounts {
		if u.Role != domain.RoleTeacher {
			continue
		}
		for d := 0; d < 5; d++ {
			if err := slots.EnsureSeeded(ctx, u.ID, today.AddDate(0, 0, d)); err != nil {
				log.Fatal("seed slots failed:", err)
			}
		}
	}

	log.Println("Seed completed. Login with any account, password: password123")
}
