// seed inserts development sample teams for local testing.
// Idempotent: skips inserts if the demo owner already has teams.
package main

import (
	"context"
	"log"
	"os"

	"gamerie/backend/internal/config"
	"gamerie/backend/internal/db"
	"gamerie/backend/internal/platform/teamlock"
	"gamerie/backend/internal/team/domain"
	"gamerie/backend/internal/team/repository"
	teamservice "gamerie/backend/internal/team/service"
)

// Demo user ids. Stable strings rather than random UUIDs so seeded data is
// addressable from curl sessions and the idempotence check works across runs.
const (
	demoOwnerID   = "dev-user-owner"
	demoLeaderID  = "dev-user-leader"
	demoMemberID  = "dev-user-member"
	demoOutsider  = "dev-user-outsider"
	demoCaptainID = "dev-user-captain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	repo := repository.NewPostgresRepository(conn)
	svc := teamservice.NewMembershipService(repo, teamlock.NewGuard(), nil, nil)
	ctx := context.Background()

	existing, err := repo.ListTeamsByMember(ctx, demoOwnerID)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if len(existing) > 0 {
		log.Println("Seed already applied (demo owner has teams). Skipping.")
		os.Exit(0)
	}

	ninjas, err := svc.CreateTeam(ctx, demoOwnerID, domain.Profile{
		Name:        "Neon Ninjas",
		Description: "Competitive squad grinding the ranked ladder.",
		Country:     "SE",
		Region:      "EU",
		Timezone:    "Europe/Stockholm",
		Level:       "Pro",
		TeamMessage: "Tryouts every Thursday.",
	})
	if err != nil {
		log.Fatalf("create Neon Ninjas: %v", err)
	}

	// Build out a roster with the usual governance flow: invite, accept, promote.
	if _, err := svc.AddMember(ctx, ninjas.ID, demoOwnerID, demoLeaderID, domain.RoleLeader); err != nil {
		log.Fatalf("add leader: %v", err)
	}
	if _, err := svc.Invite(ctx, ninjas.ID, demoLeaderID, demoMemberID, "Come play with us"); err != nil {
		log.Fatalf("invite member: %v", err)
	}
	if _, err := svc.ResolveInvitation(ctx, ninjas.ID, demoMemberID, true); err != nil {
		log.Fatalf("accept invitation: %v", err)
	}
	if _, err := svc.RequestJoin(ctx, ninjas.ID, demoCaptainID, "Ex-captain looking for a team"); err != nil {
		log.Fatalf("request join: %v", err)
	}
	if _, err := svc.ResolveJoinRequest(ctx, ninjas.ID, demoOwnerID, demoCaptainID, true); err != nil {
		log.Fatalf("accept join request: %v", err)
	}
	if _, err := svc.ChangeRole(ctx, ninjas.ID, demoOwnerID, demoCaptainID, domain.RoleChief); err != nil {
		log.Fatalf("promote captain: %v", err)
	}

	dragons, err := svc.CreateTeam(ctx, demoOwnerID, domain.Profile{
		Name:        "Digital Dragons",
		Description: "Casual weekend scrims, all levels welcome.",
		Region:      "NA",
		Level:       "Amateur",
	})
	if err != nil {
		log.Fatalf("create Digital Dragons: %v", err)
	}
	if _, err := svc.Invite(ctx, dragons.ID, demoOwnerID, demoOutsider, "Weekend scrims?"); err != nil {
		log.Fatalf("invite outsider: %v", err)
	}

	if _, err := svc.CreateTeam(ctx, demoCaptainID, domain.Profile{
		Name:        "GamerieBest",
		Description: "Showcase team for the platform demo.",
		Level:       "Semi-Pro",
	}); err != nil {
		log.Fatalf("create GamerieBest: %v", err)
	}

	log.Println("Seed completed successfully.")
	log.Printf("Demo users: owner=%s leader=%s member=%s captain=%s outsider=%s",
		demoOwnerID, demoLeaderID, demoMemberID, demoCaptainID, demoOutsider)
}
