package command

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"practice-service/internal/service"
)

const (
	emailFlag    = "email"
	fullNameFlag = "full-name"
	passwordFlag = "password"
)

var createAdminFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Email of the system administrator",
	},
	fullNameFlag: &cobraflags.StringFlag{
		Name:  fullNameFlag,
		Value: "",
		Usage: "Full name of the system administrator",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Initial password (at least 8 characters)",
	},
}

func newCreateAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a system administrator account",
		RunE:  createAdminCommand,
	}
	cobraflags.RegisterMap(cmd, createAdminFlags)
	return cmd
}

func createAdminCommand(cmd *cobra.Command, _ []string) error {
	email := createAdminFlags[emailFlag].GetString()
	password := createAdminFlags[passwordFlag].GetString()
	if email == "" || password == "" {
		return fmt.Errorf("--%s and --%s are required", emailFlag, passwordFlag)
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	auth := service.NewAuthService(a.db, a.jwt, a.log)
	user, err := auth.CreateSystemAdmin(cmd.Context(), email, createAdminFlags[fullNameFlag].GetString(), password)
	if err != nil {
		return err
	}

	a.log.Info("System administrator created", zap.Uint("user_id", user.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "created system administrator %s (id %d)\n", user.Email, user.ID)
	return nil
}
