// Command admin is the operator tool for bootstrapping administrators and
// reviewing the signup queue directly against the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"resident-portal/internal/app"
	"resident-portal/internal/core/auth"
	"resident-portal/internal/core/config"
	"resident-portal/internal/core/database"
	"resident-portal/internal/core/logger"
	"resident-portal/internal/domain"
	"resident-portal/internal/repo"
	"resident-portal/internal/service"
)

const usage = `usage: admin <command> [flags]

commands:
  promote -email E                          approve E and grant admin
  create-admin -email E -password P [-first F -last L]
                                            create an approved admin account
  pending                                   list profiles awaiting approval
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, false)
	defer cleanup()

	if cfg.DB.InMemory() {
		log.Fatal("admin needs a persistent database; set db.dsn")
	}
	stores, db, err := app.Open(cfg, log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "promote":
		err = promote(ctx, stores, log, args)
	case "create-admin":
		err = createAdmin(ctx, cfg, stores, log, args)
	case "pending":
		err = pending(ctx, stores, log)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error(cmd+" failed", zap.Error(err))
		os.Exit(1)
	}
}

func promote(ctx context.Context, st *repo.Stores, l *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("promote", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	_ = fs.Parse(args)
	if *email == "" {
		return fmt.Errorf("-email is required")
	}
	u, err := st.Accounts.FindUserByEmail(ctx, domain.NormalizeEmail(*email))
	if err != nil {
		return fmt.Errorf("find %s: %w", *email, err)
	}
	p, err := service.NewProfileService(st.Accounts, st.Profiles, nil, l).Approve(ctx, u.ID, true)
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s/%s\n", p.Email, p.Status, p.Role)
	return nil
}

func createAdmin(ctx context.Context, cfg *config.Config, st *repo.Stores, l *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "initial password (min 6 chars)")
	first := fs.String("first", "Portal", "first name")
	last := fs.String("last", "Admin", "last name")
	_ = fs.Parse(args)

	jwter := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: time.Hour}
	s, err := service.NewAuthService(st.Accounts, st.Profiles, jwter, true, l).Signup(ctx, service.SignupInput{
		Email: *email, Password: *password, FirstName: *first, LastName: *last,
	})
	if err != nil {
		return err
	}
	p, err := service.NewProfileService(st.Accounts, st.Profiles, nil, l).SetRole(ctx, s.User.ID, service.RoleInput{Role: domain.RoleAdmin})
	if err != nil {
		return err
	}
	fmt.Printf("created admin %s (%s)\n", p.Email, p.ID)
	return nil
}

func pending(ctx context.Context, st *repo.Stores, l *zap.Logger) error {
	items, err := service.NewProfileService(st.Accounts, st.Profiles, nil, l).ListPending(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tYEAR\tSIGNED UP")
	for _, p := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Email, p.FullName(), p.Year, p.CreatedAt.Format(time.DateTime))
	}
	return w.Flush()
}
