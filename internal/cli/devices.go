package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mrlokans/phrasebook/internal/auth"
	"github.com/mrlokans/phrasebook/internal/config"
	"github.com/mrlokans/phrasebook/internal/database"
	"github.com/mrlokans/phrasebook/internal/database/devices"
)

// DeviceCommand manages the devices allowed to sync in token mode.
// Action is one of "register", "rotate" or "list".
type DeviceCommand struct {
	Action       string
	DatabasePath string
	DeviceID     string
	Name         string
	BcryptCost   int
}

func NewDeviceCommand(action string) *DeviceCommand {
	return &DeviceCommand{Action: action}
}

func (cmd *DeviceCommand) name() string {
	switch cmd.Action {
	case "register":
		return "register-device"
	case "rotate":
		return "rotate-token"
	default:
		return "list-devices"
	}
}

func (cmd *DeviceCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	fs := flag.NewFlagSet(cmd.name(), flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the entries database")
	if cmd.Action != "list" {
		fs.StringVar(&cmd.DeviceID, "device", "", "Device id (required)")
		fs.IntVar(&cmd.BcryptCost, "cost", cfg.Auth.BcryptCost, "bcrypt cost for the token hash")
	}
	if cmd.Action == "register" {
		fs.StringVar(&cmd.Name, "name", "", "Human readable device name")
	}

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s [options]\n\n", os.Args[0], cmd.name())
		switch cmd.Action {
		case "register":
			fmt.Fprintf(os.Stderr, "Register a device and print its bearer token. The token is shown once.\n\n")
		case "rotate":
			fmt.Fprintf(os.Stderr, "Issue a new token for a device. The old token stops working.\n\n")
		default:
			fmt.Fprintf(os.Stderr, "List registered devices.\n\n")
		}
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Action != "list" && cmd.DeviceID == "" {
		return fmt.Errorf("required flag -device not provided")
	}
	return nil
}

func (cmd *DeviceCommand) Run() error {
	db, err := database.NewQuietDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := devices.NewRepository(db.DB)
	service := auth.NewService(repo, config.Auth{Mode: config.AuthModeToken, BcryptCost: cmd.BcryptCost})

	switch cmd.Action {
	case "register":
		device, token, err := service.RegisterDevice(cmd.DeviceID, cmd.Name)
		if err != nil {
			return err
		}
		fmt.Printf("Registered device %s\n", device.DeviceID)
		fmt.Printf("Token: %s\n", token)
		fmt.Println("Send it as 'Authorization: Bearer <token>' together with the X-Device-ID header.")
	case "rotate":
		token, err := service.RotateToken(cmd.DeviceID)
		if err != nil {
			return err
		}
		fmt.Printf("New token for %s: %s\n", cmd.DeviceID, token)
	default:
		list, err := repo.ListDevices()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No devices registered")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DEVICE\tNAME\tCREATED\tLAST SEEN")
		for _, d := range list {
			lastSeen := "never"
			if d.LastSeenAt != nil {
				lastSeen = d.LastSeenAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.DeviceID, d.Name, d.CreatedAt.Format("2006-01-02"), lastSeen)
		}
		return w.Flush()
	}
	return nil
}
