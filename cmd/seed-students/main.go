package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/database"
	"github.com/examhall/examhall-backend/internal/logger"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
	"github.com/examhall/examhall-backend/internal/service"
)

const defaultPassword = "examhall123"

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)
	authService := service.NewAuthService(cfg, nil)
	studentService := service.NewStudentService(studentRepo, authService)

	names := []string{
		"Alice Johnson", "Bob Smith", "Carol Williams", "David Brown", "Emma Davis",
		"Frank Miller", "Grace Wilson", "Henry Moore", "Isla Taylor", "Jack Anderson",
		"Kara Thomas", "Liam Jackson", "Mia White", "Noah Harris", "Olivia Martin",
		"Peter Thompson", "Quinn Garcia", "Ruby Martinez", "Sam Robinson", "Tara Clark",
		"Umar Rodriguez", "Vera Lewis", "Will Lee", "Xander Walker", "Yara Hall",
		"Zane Allen", "Amber Young", "Ben Hernandez", "Cleo King", "Dean Wright",
		"Elsa Lopez", "Finn Hill", "Gina Scott", "Hugo Green", "Ivy Adams",
		"Jon Baker", "Kim Gonzalez", "Leo Nelson", "Mara Carter", "Nate Mitchell",
		"Opal Perez", "Pia Roberts", "Ray Turner", "Sia Phillips", "Tom Campbell",
		"Una Parker", "Vic Evans", "Wren Edwards", "Ximena Collins", "Yusuf Stewart",
	}

	fmt.Printf("=== Seeding %d Students ===\n", len(names))

	successCount := 0
	for i, name := range names {
		email := fmt.Sprintf("%s%d@examhall.test",
			strings.ToLower(strings.Split(name, " ")[0]), i+1)

		_, err := studentService.Register(ctx, &model.RegisterStudentRequest{
			Name:     name,
			Email:    email,
			Password: defaultPassword,
		})
		if err != nil {
			fmt.Printf("Error creating student %s (%s): %v\n", name, email, err)
			continue
		}

		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Created %d students...\n", i+1)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d students.\n", successCount, len(names))
}
