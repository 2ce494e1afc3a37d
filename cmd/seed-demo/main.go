package main

import (
	"context"
	"fmt"

	"github.com/studika/gradebook-backend/internal/config"
	"github.com/studika/gradebook-backend/internal/database"
	"github.com/studika/gradebook-backend/internal/logger"
	"github.com/studika/gradebook-backend/internal/model"
	"github.com/studika/gradebook-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a small demo dataset: a teacher account, a curriculum whose credit
// weights sum to 100 per year, and a handful of students.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	principalRepo := repository.NewPrincipalRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)

	// ─── Teacher Account ───────────────────────────────────────────────
	hash, err := bcrypt.GenerateFromPassword([]byte("teacher123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}
	teacher := &model.Principal{
		Username:     "demo.teacher",
		PasswordHash: string(hash),
		Role:         model.RoleTeacher,
		Active:       true,
	}
	if err := principalRepo.Create(ctx, teacher); err != nil {
		log.Fatal().Err(err).Msg("Failed to create teacher")
	}
	fmt.Printf("Created teacher %q (password: teacher123)\n", teacher.Username)

	// ─── Curriculum ────────────────────────────────────────────────────
	subjects := []*model.Subject{
		{Name: "Mathematics I", Year: 1, CreditWeight: 30},
		{Name: "Physics I", Year: 1, CreditWeight: 25},
		{Name: "Programming Fundamentals", Year: 1, CreditWeight: 25},
		{Name: "Technical English", Year: 1, CreditWeight: 20},
		{Name: "Mathematics II", Year: 2, CreditWeight: 30},
		{Name: "Databases", Year: 2, CreditWeight: 25},
		{Name: "Software Engineering", Year: 2, CreditWeight: 25},
		{Name: "Project Work", Year: 2, CreditWeight: 20},
	}
	for _, s := range subjects {
		if err := subjectRepo.Create(ctx, s); err != nil {
			log.Fatal().Err(err).Str("subject", s.Name).Msg("Failed to create subject")
		}
	}
	fmt.Printf("Created %d subjects\n", len(subjects))

	// ─── Students ──────────────────────────────────────────────────────
	students := []*model.Student{
		{Number: "2026-001", Name: "Alex Morgan"},
		{Number: "2026-002", Name: "Jamie Chen"},
		{Number: "2026-003", Name: "Sam Okafor"},
		{Number: "2026-004", Name: "Riley Novak"},
	}
	for _, st := range students {
		if err := studentRepo.Create(ctx, st); err != nil {
			log.Fatal().Err(err).Str("student", st.Name).Msg("Failed to create student")
		}
	}
	fmt.Printf("Created %d students\n", len(students))

	// ─── Assignments ───────────────────────────────────────────────────
	// The demo teacher covers the year-1 curriculum.
	assigned := 0
	for _, s := range subjects {
		if s.Year != 1 {
			continue
		}
		a := &model.TeacherAssignment{TeacherID: teacher.ID, SubjectID: s.ID}
		if err := assignmentRepo.Create(ctx, a); err != nil {
			log.Fatal().Err(err).Str("subject", s.Name).Msg("Failed to assign teacher")
		}
		assigned++
	}
	fmt.Printf("Assigned teacher to %d subjects\n", assigned)

	fmt.Println("Demo data seeded successfully")
}
