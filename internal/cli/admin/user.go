package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safe2go/helpdesk/internal/config"
	"github.com/safe2go/helpdesk/internal/database"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/repository"
	"github.com/safe2go/helpdesk/internal/service"
	"github.com/spf13/cobra"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		Long:  "Create, approve and list helpdesk user accounts",
	}

	cmd.AddCommand(UserCreateCmd())
	cmd.AddCommand(UserApproveCmd())
	cmd.AddCommand(UserListCmd())

	return cmd
}

func UserCreateCmd() *cobra.Command {
	var (
		name     string
		password string
		role     string
		company  string
	)

	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create a new user",
		Long:  "Create a pre-approved user account with the specified email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runUserCreate(args[0], name, password, role, company, outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&role, "role", "client", "Account role (client or admin)")
	cmd.Flags().StringVar(&company, "company", "", "Partner company")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runUserCreate(email, name, password, role, company, outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	userSvc := service.NewUserService(userRepo)

	user, err := userSvc.Create(ctx, service.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.UserRole(role),
		Company:  company,
	}, "cli")
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"status":     user.Status,
			"created_at": user.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("User created: %s <%s> (%s)\n", user.Name, user.Email, user.ID)
	}

	return nil
}

func UserApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <email>",
		Short: "Approve a pending user",
		Long:  "Approve a pending registration so the account can sign in",
		Args:  cobra.ExactArgs(1),
		RunE:  runUserApprove,
	}

	return cmd
}

func runUserApprove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	email := args[0]

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	userSvc := service.NewUserService(userRepo)
	if _, err := userSvc.Approve(ctx, user.ID, "cli"); err != nil {
		return fmt.Errorf("failed to approve user: %w", err)
	}

	fmt.Printf("User approved: %s <%s>\n", user.Name, user.Email)
	return nil
}

func UserListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  "List user accounts, optionally filtered by approval status",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runUserList(outputFormat, status)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved or rejected)")

	return cmd
}

func runUserList(outputFormat, status string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	userSvc := service.NewUserService(userRepo)

	users, err := userSvc.List(ctx, domain.UserStatus(status))
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(users))
		for i, u := range users {
			data[i] = map[string]interface{}{
				"id":         u.ID,
				"name":       u.Name,
				"email":      u.Email,
				"role":       u.Role,
				"status":     u.Status,
				"created_at": u.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(users) == 0 {
			fmt.Println("No users found")
			return nil
		}
		fmt.Println("Users:")
		for _, u := range users {
			fmt.Printf("  %s: %s <%s> [%s/%s]\n", u.ID, u.Name, u.Email, u.Role, u.Status)
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pool, nil
}
