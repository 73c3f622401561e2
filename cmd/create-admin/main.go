package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/evaluia/examcore-backend/internal/config"
	"github.com/evaluia/examcore-backend/internal/database"
	"github.com/evaluia/examcore-backend/internal/logger"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/repository"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	profileRepo := repository.NewProfileRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Company: ")
	company, _ := reader.ReadString('\n')
	company = strings.TrimSpace(company)
	if company == "" {
		fmt.Println("Error: Company is required")
		return
	}

	fmt.Print("Enter Role (super_admin/examiner) [super_admin]: ")
	roleInput, _ := reader.ReadString('\n')
	roleInput = strings.TrimSpace(roleInput)
	role := model.RoleSuperAdmin
	switch roleInput {
	case "", "super_admin":
	case "examiner":
		role = model.RoleExaminer
	default:
		fmt.Println("Error: Role must be super_admin or examiner")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		fmt.Printf("Error: Failed to hash password: %v\n", err)
		return
	}

	profile := &model.Profile{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Company:      company,
		CanLogin:     true,
	}

	if err := profileRepo.Create(ctx, profile); err != nil {
		fmt.Printf("Error: Failed to create admin: %v\n", err)
		return
	}

	fmt.Printf("Admin %q (%s) created with role %s\n", name, email, role)
}
