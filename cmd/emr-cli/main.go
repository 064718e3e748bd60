// emr-cli is the front-desk terminal client: it talks to the clinic API
// through the gateway, keeps a local snapshot of the patient list, and
// drives the queue, registration, and clinical note workflows.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eyenotes/emr/internal/domain/alert"
	"github.com/eyenotes/emr/internal/domain/emr"
	"github.com/eyenotes/emr/internal/gateway"
	"github.com/eyenotes/emr/internal/platform/auth"
	"github.com/eyenotes/emr/internal/queue"
	"github.com/eyenotes/emr/internal/registration"
	"github.com/eyenotes/emr/internal/session"
	"github.com/eyenotes/emr/internal/store"
)

type app struct {
	log     zerolog.Logger
	client  *gateway.Client
	store   *store.Store
	queue   *queue.Queue
	regform *registration.Service
	user    string
}

func newApp(apiURL, snapshot string) *app {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	client := gateway.NewClient(apiURL, log)
	st := store.New(client, snapshot, log)
	a := &app{
		log:     log,
		client:  client,
		store:   st,
		queue:   queue.New(st),
		regform: registration.NewService(client, st),
	}
	// Each subcommand is a fresh process; restore the token login left
	// behind so record saves carry the signed-in clinician.
	if creds, err := loadCredentials(credPath(snapshot)); err == nil {
		client.UseToken(creds.Token)
		a.user = creds.Name
	}
	return a
}

// credentials is the signed-in state persisted between CLI invocations,
// stored beside the patient snapshot.
type credentials struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

func credPath(snapshot string) string {
	return filepath.Join(filepath.Dir(snapshot), "emr-credentials.json")
}

func loadCredentials(path string) (*credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if c.Token == "" {
		return nil, fmt.Errorf("credentials file %s holds no token", path)
	}
	return &c, nil
}

func saveCredentials(path string, c *credentials) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func main() {
	var apiURL, snapshot string

	rootCmd := &cobra.Command{
		Use:   "emr-cli",
		Short: "Clinic front-desk terminal",
	}
	defaultSnapshot := filepath.Join(os.TempDir(), "emr-patients.json")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:5000", "Clinic API base URL")
	rootCmd.PersistentFlags().StringVar(&snapshot, "snapshot", defaultSnapshot, "Local patient snapshot path")

	rootCmd.AddCommand(loginCmd(&apiURL, &snapshot))
	rootCmd.AddCommand(queueCmd(&apiURL, &snapshot))
	rootCmd.AddCommand(registerCmd(&apiURL, &snapshot))
	rootCmd.AddCommand(recordCmd(&apiURL, &snapshot))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loginCmd(apiURL, snapshot *string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the clinic API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*apiURL, *snapshot)
			name, err := a.client.Login(context.Background(), username, password)
			if err != nil {
				return err
			}
			creds := &credentials{Token: a.client.Token(), Name: name}
			if err := saveCredentials(credPath(*snapshot), creds); err != nil {
				return fmt.Errorf("signed in but could not persist session: %w", err)
			}
			fmt.Printf("signed in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "Username")
	cmd.Flags().StringVar(&password, "pass", "", "Password")
	cmd.MarkFlagRequired("user")
	return cmd
}

func queueCmd(apiURL, snapshot *string) *cobra.Command {
	var watch bool
	var refresh time.Duration
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the waiting-room queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*apiURL, *snapshot)
			ctx := context.Background()
			a.store.Load(ctx)

			if !watch {
				printQueue(a.queue.Snapshot())
				return nil
			}

			watchCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			for entries := range a.queue.Watch(watchCtx, refresh) {
				printQueue(entries)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Refresh continuously")
	cmd.Flags().DurationVar(&refresh, "refresh", time.Minute, "Watch refresh interval")
	return cmd
}

func printQueue(entries []queue.Entry) {
	fmt.Printf("%-10s %-10s %-25s %-4s %-15s %s\n", "ID", "MR", "NAME", "TYPE", "WAITING", "PURPOSE")
	for _, e := range entries {
		purpose := ""
		if e.Purpose != nil {
			purpose = *e.Purpose
		}
		fmt.Printf("%-10s %-10s %-25s %-4s %-15s %s\n",
			e.ID, e.MRNumber, e.Name, e.VisitType, e.WaitingFor, purpose)
	}
}

func registerCmd(apiURL, snapshot *string) *cobra.Command {
	form := &registration.Form{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Check in a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*apiURL, *snapshot)
			ctx := context.Background()
			a.store.Load(ctx)

			// Returning patients get their demographics prefilled; flags
			// the desk typed still win.
			prefill, found := a.regform.Lookup(ctx, form.MRNumber)
			if found {
				fmt.Printf("known MR, review visit for %s\n", prefill.Name)
				merged := *prefill
				if form.Name != "" {
					merged.Name = form.Name
				}
				if form.Age > 0 {
					merged.Age = form.Age
				}
				form = &merged
			}

			created, err := a.regform.Submit(ctx, form)
			if err != nil {
				return err
			}
			fmt.Printf("checked in %s (%s) as %s\n", created.Name, created.MRNumber, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.MRNumber, "mr", "", "MR number")
	cmd.Flags().StringVar(&form.Name, "name", "", "Patient name")
	cmd.Flags().IntVar(&form.Age, "age", 0, "Age")
	cmd.Flags().StringVar(&form.Gender, "gender", "", "Gender")
	cmd.Flags().StringVar(&form.City, "city", "", "City")
	cmd.Flags().StringVar(&form.State, "state", "", "State")
	cmd.Flags().StringVar(&form.Mobile, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&form.Purpose, "purpose", "", "Purpose of visit")
	cmd.Flags().StringVar(&form.Photo, "photo", "", "Photo data URI")
	cmd.MarkFlagRequired("mr")
	return cmd
}

func recordCmd(apiURL, snapshot *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Work with a patient's clinical record",
	}
	cmd.AddCommand(recordOpenCmd(apiURL, snapshot))
	cmd.AddCommand(recordSectionCmd(apiURL, snapshot))
	cmd.AddCommand(recordSaveCmd(apiURL, snapshot))
	cmd.AddCommand(recordVisitsCmd(apiURL, snapshot))
	cmd.AddCommand(recordAlertCmd(apiURL, snapshot))
	return cmd
}

func recordVisitsCmd(apiURL, snapshot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "visits <patient-id>",
		Short: "List a patient's visit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*apiURL, *snapshot)
			visits := a.client.Visits(context.Background(), args[0])
			if len(visits) == 0 {
				fmt.Println("no visits on record")
				return nil
			}
			for _, v := range visits {
				fmt.Printf("%s  %-10s %-4s %s\n",
					v.Date.Format("02-Jan-06"), v.Location, v.TypeCode(), v.Clinic)
			}
			return nil
		},
	}
}

func recordAlertCmd(apiURL, snapshot *string) *cobra.Command {
	var alertType string
	cmd := &cobra.Command{
		Use:   "alert <patient-id> <value>",
		Short: "Flag an allergy or condition on a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*apiURL, *snapshot)
			ctx := context.Background()
			created, err := a.client.AddAlert(ctx, args[0], alertType, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("flagged [%s] %s\n", created.AlertType, created.AlertValue)
			for _, al := range a.client.Alerts(ctx, args[0]) {
				fmt.Printf("ALERT [%s] %s\n", al.AlertType, al.AlertValue)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&alertType, "type", alert.TypeAllergy, "Alert type: allergy or condition")
	return cmd
}

// verifyIdentity runs the MR challenge that gates every record open.
func verifyIdentity(a *app, patientID, digits string) error {
	if err := a.queue.VerifyMR(patientID, digits); err != nil {
		return fmt.Errorf("identity check failed: %w", err)
	}
	return nil
}

func recordOpenCmd(apiURL, snapshot *string) *cobra.Command {
	var digits string
	cmd := &cobra.Command{
		Use:   "open <patient-id>",
		Short: "Open a record after the MR identity challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*apiURL, *snapshot)
			ctx := context.Background()
			a.store.Load(ctx)

			if err := verifyIdentity(a, args[0], digits); err != nil {
				return err
			}

			detail := a.client.Patient(ctx, args[0])
			if detail == nil {
				p, err := a.store.Patient(args[0])
				if err != nil {
					return err
				}
				detail = &gateway.PatientDetail{Patient: *p}
				fmt.Println("(backend unreachable, showing local copy)")
			}
			printPatient(detail)
			return nil
		},
	}
	cmd.Flags().StringVar(&digits, "mr-digits", "", "Last digits of the MR number")
	cmd.MarkFlagRequired("mr-digits")
	return cmd
}

func printPatient(d *gateway.PatientDetail) {
	fmt.Printf("%s  MR %s  %s", d.Name, d.MRNumber, d.ID)
	if d.ParentInfo != nil {
		fmt.Printf("  (%s)", *d.ParentInfo)
	}
	fmt.Printf("\nage %d", d.Age)
	if d.City != nil {
		fmt.Printf("  %s", *d.City)
	}
	fmt.Println()
	for _, al := range d.MedicalAlerts {
		fmt.Printf("ALERT [%s] %s\n", al.AlertType, al.AlertValue)
	}
	for _, v := range d.VisitHistory {
		fmt.Printf("visit %s %s %s\n", v.Date, v.Location, v.Type)
	}
}

func recordSectionCmd(apiURL, snapshot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "section <patient-id> <section>",
		Short: "Show one clinical note section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*apiURL, *snapshot)
			kind, err := emr.ParseKind(args[1])
			if err != nil {
				return err
			}

			sess := session.NewSectionSession(a.client, args[0], kind)
			sess.Load(context.Background())

			if !sess.Exists() {
				fmt.Printf("%s: not recorded yet (blank form)\n", kind)
			} else {
				fmt.Printf("%s (saved", kind)
				if sess.Author() != "" {
					fmt.Printf(" by %s", sess.Author())
				}
				fmt.Println(")")
			}
			var pretty map[string]interface{}
			if err := json.Unmarshal(sess.Value(), &pretty); err != nil {
				return err
			}
			out, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
}

func recordSaveCmd(apiURL, snapshot *string) *cobra.Command {
	var dataJSON, author string
	cmd := &cobra.Command{
		Use:   "save <patient-id> <section>",
		Short: "Save one clinical note section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*apiURL, *snapshot)
			kind, err := emr.ParseKind(args[1])
			if err != nil {
				return err
			}
			if author == "" {
				author = a.user
			}
			if author == "" {
				author = auth.DevUser
			}

			ctx := context.Background()
			sess := session.NewSectionSession(a.client, args[0], kind)
			sess.Load(ctx)
			sess.Edit()
			if err := sess.Apply(func(v *json.RawMessage) {
				*v = json.RawMessage(dataJSON)
			}); err != nil {
				return err
			}
			if err := sess.Save(ctx, author); err != nil {
				return fmt.Errorf("save failed, edits kept: %w", err)
			}
			fmt.Printf("%s saved by %s\n", kind, author)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataJSON, "data", "", "Section payload as JSON")
	cmd.Flags().StringVar(&author, "author", "", "Author of record")
	cmd.MarkFlagRequired("data")
	return cmd
}
