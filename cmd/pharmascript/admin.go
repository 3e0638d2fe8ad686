package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pharmascript/pharmascript/internal/admin/form"
	"github.com/pharmascript/pharmascript/internal/admin/route"
	"github.com/pharmascript/pharmascript/internal/admin/screen"
	"github.com/pharmascript/pharmascript/internal/config"
	"github.com/pharmascript/pharmascript/pkg/client"
	"github.com/pharmascript/pharmascript/pkg/entity"
	"github.com/pharmascript/pharmascript/pkg/models"
	"github.com/pharmascript/pharmascript/pkg/pagination"
)

// session is the connection shared by the admin subcommands.
type session struct {
	client *client.Client
	logger zerolog.Logger
	out    io.Writer
}

func (s *session) open(out io.Writer, verbose bool) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	s.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	s.out = out

	s.client, err = client.New(cfg.BaseURL,
		client.WithToken(cfg.Token),
		client.WithLogger(s.logger),
		client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	return err
}

// editForm is the part of a form the admin commands drive.
type editForm[P any] interface {
	screen.Editor[P]
	Set(name, raw string) error
	Names() []string
}

type saver interface {
	Save(ctx context.Context) error
}

// entityCLI describes how one entity is listed, shown and edited.
type entityCLI[T any, P client.Model[T]] struct {
	name     string
	entity   string
	resource func(c *client.Client) *client.Resource[T, P]
	columns  []string
	row      func(v P) []string
	// edit builds the form and update screen for record, which is nil when
	// creating.
	edit func(ctx context.Context, cmd *cobra.Command, s *session, record P, history screen.History) (editForm[P], saver, error)
	// flags adds entity-specific flags to new and edit.
	flags func(cmd *cobra.Command)
}

func simpleEdit[T any, P client.Model[T]](res func(*client.Client) *client.Resource[T, P], newForm func(P) editForm[P]) func(context.Context, *cobra.Command, *session, P, screen.History) (editForm[P], saver, error) {
	return func(_ context.Context, _ *cobra.Command, s *session, record P, history screen.History) (editForm[P], saver, error) {
		f := newForm(record)
		u := screen.NewUpdate[T, P](res(s.client), f, history, s.logger)
		u.Init(record)
		return f, u, nil
	}
}

var doctorsCLI = entityCLI[models.Doctor, *models.Doctor]{
	name:     "doctors",
	entity:   models.EntityDoctor,
	resource: client.Doctors,
	columns:  []string{"FIRST NAME", "LAST NAME", "LICENSE"},
	row: func(d *models.Doctor) []string {
		return []string{str(d.FirstName), str(d.LastName), str(d.LicenseNumber)}
	},
	edit: simpleEdit(client.Doctors, func(d *models.Doctor) editForm[*models.Doctor] {
		return form.NewDoctorForm(d)
	}),
}

var drugsCLI = entityCLI[models.Drug, *models.Drug]{
	name:     "drugs",
	entity:   models.EntityDrug,
	resource: client.Drugs,
	columns:  []string{"MAKER", "BRAND NAME", "GENERIC NAME"},
	row: func(d *models.Drug) []string {
		return []string{str(d.Maker), str(d.BrandName), str(d.GenericName)}
	},
	edit: simpleEdit(client.Drugs, func(d *models.Drug) editForm[*models.Drug] {
		return form.NewDrugForm(d)
	}),
}

var patientsCLI = entityCLI[models.Patient, *models.Patient]{
	name:     "patients",
	entity:   models.EntityPatient,
	resource: client.Patients,
	columns:  []string{"FIRST NAME", "LAST NAME", "BIRTHDATE"},
	row: func(p *models.Patient) []string {
		birthdate := ""
		if p.Birthdate != nil {
			birthdate = p.Birthdate.String()
		}
		return []string{str(p.FirstName), str(p.LastName), birthdate}
	},
	edit: simpleEdit(client.Patients, func(p *models.Patient) editForm[*models.Patient] {
		return form.NewPatientForm(p)
	}),
}

var prescriptionsCLI = entityCLI[models.Prescription, *models.Prescription]{
	name:     "prescriptions",
	entity:   models.EntityPrescription,
	resource: client.Prescriptions,
	columns:  []string{"AMOUNT", "INTERVAL", "DRUG", "PATIENT", "DOCTOR"},
	row: func(p *models.Prescription) []string {
		row := []string{num(p.DosageAmount), num(p.DosageInterval), "", "", ""}
		if p.Drug != nil {
			row[2] = str(p.Drug.BrandName)
		}
		if p.Patient != nil {
			row[3] = strings.TrimSpace(str(p.Patient.FirstName) + " " + str(p.Patient.LastName))
		}
		if p.Doctor != nil {
			row[4] = strings.TrimSpace(str(p.Doctor.FirstName) + " " + str(p.Doctor.LastName))
		}
		return row
	},
	edit: editPrescription,
	flags: func(cmd *cobra.Command) {
		cmd.Flags().String("drug", "", "Drug id, or none to clear")
		cmd.Flags().String("patient", "", "Patient id, or none to clear")
		cmd.Flags().String("doctor", "", "Doctor id, or none to clear")
	},
}

func editPrescription(ctx context.Context, cmd *cobra.Command, s *session, record *models.Prescription, history screen.History) (editForm[*models.Prescription], saver, error) {
	f := form.NewPrescriptionForm(record)
	u := screen.NewPrescriptionUpdate(client.Prescriptions(s.client), f, screen.Lookups{
		Drugs:    client.Drugs(s.client),
		Patients: client.Patients(s.client),
		Doctors:  client.Doctors(s.client),
	}, history, s.logger)
	if err := u.Init(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("load options: %w", err)
	}

	var err error
	if f.Drug, err = pick(cmd, "drug", u.DrugsSharedCollection, f.Drug, func(id int64) *models.Drug {
		return &models.Drug{ID: &id}
	}); err != nil {
		return nil, nil, err
	}
	if f.Patient, err = pick(cmd, "patient", u.PatientsSharedCollection, f.Patient, func(id int64) *models.Patient {
		return &models.Patient{ID: &id}
	}); err != nil {
		return nil, nil, err
	}
	if f.Doctor, err = pick(cmd, "doctor", u.DoctorsSharedCollection, f.Doctor, func(id int64) *models.Doctor {
		return &models.Doctor{ID: &id}
	}); err != nil {
		return nil, nil, err
	}
	return f, u, nil
}

// pick applies a selector flag. An id selects the matching option, "none"
// clears the selection and an absent flag keeps current.
func pick[E any, P entity.Ref[E]](cmd *cobra.Command, flag string, options []P, current P, ref func(id int64) P) (P, error) {
	raw, _ := cmd.Flags().GetString(flag)
	switch raw {
	case "":
		return current, nil
	case "none":
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("--%s: %q is not an id", flag, raw)
	}
	return form.Select[E](options, ref(id)), nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func adminCmd() *cobra.Command {
	s := &session{}
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage records on a running server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return s.open(cmd.OutOrStdout(), verbose)
		},
	}
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log every request")

	cmd.AddCommand(doctorsCLI.command(s))
	cmd.AddCommand(drugsCLI.command(s))
	cmd.AddCommand(patientsCLI.command(s))
	cmd.AddCommand(prescriptionsCLI.command(s))
	return cmd
}

func (e entityCLI[T, P]) command(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   e.name,
		Short: "Manage " + e.name,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + e.name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.list(cmd, s)
		},
	}
	listCmd.Flags().Int("page", 0, "Page number, counted from zero")
	listCmd.Flags().Int("size", pagination.DefaultSize, "Page size")
	listCmd.Flags().String("sort", "", "Sort as property,asc or property,desc")

	viewCmd := &cobra.Command{
		Use:   "view <id>",
		Short: "Show one " + e.entity,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.view(cmd, s, args[0])
		},
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Create a " + e.entity,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.save(cmd, s, "new")
		},
	}
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a " + e.entity,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.save(cmd, s, args[0]+"/edit")
		},
	}
	for _, c := range []*cobra.Command{newCmd, editCmd} {
		c.Flags().StringArray("set", nil, "Field value as name=value, repeatable")
		if e.flags != nil {
			e.flags(c)
		}
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + e.entity,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.remove(cmd, s, args[0])
		},
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	cmd.AddCommand(listCmd, viewCmd, newCmd, editCmd, deleteCmd)
	return cmd
}

// resolve matches path against the route table and looks up the record the
// route needs. A record that does not exist is an error here.
func (e entityCLI[T, P]) resolve(ctx context.Context, s *session, path string) (P, error) {
	r, params, ok := route.Match(route.Table(), path)
	if !ok {
		return nil, fmt.Errorf("no route for %q", path)
	}
	if !r.Resolve {
		return nil, nil
	}

	var location string
	nav := route.NavigatorFunc(func(p ...string) { location = strings.Join(p, "/") })
	v, found, err := route.NewResolver[T, P](e.resource(s.client), nav, s.logger).Resolve(ctx, params)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Debug().Str("location", location).Msg("redirected")
		return nil, fmt.Errorf("%s %s not found", e.entity, params["id"])
	}
	return v, nil
}

func (e entityCLI[T, P]) list(cmd *cobra.Command, s *session) error {
	r, _, _ := route.Match(route.Table(), "")
	sort, _ := cmd.Flags().GetString("sort")
	if sort == "" {
		sort = r.DefaultSort
	}

	l, err := screen.NewList[T, P](e.resource(s.client), sort, s.logger)
	if err != nil {
		return err
	}
	l.Page, _ = cmd.Flags().GetInt("page")
	l.Size, _ = cmd.Flags().GetInt("size")
	if err := l.Load(cmd.Context()); err != nil {
		return err
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(append([]string{"ID"}, e.columns...), "\t"))
	for _, v := range l.Items {
		cells := append([]string{strconv.FormatInt(l.TrackID(v), 10)}, e.row(v)...)
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "page %d: %d of %d %s\n", l.Page, len(l.Items), l.Total, e.name)
	return nil
}

func (e entityCLI[T, P]) view(cmd *cobra.Command, s *session, id string) error {
	v, err := e.resolve(cmd.Context(), s, id+"/view")
	if err != nil {
		return err
	}
	d := screen.NewDetail(v, screen.HistoryFunc(func() {}))

	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Record)
}

func (e entityCLI[T, P]) save(cmd *cobra.Command, s *session, path string) error {
	ctx := cmd.Context()
	record, err := e.resolve(ctx, s, path)
	if err != nil {
		return err
	}

	saved := false
	f, u, err := e.edit(ctx, cmd, s, record, screen.HistoryFunc(func() { saved = true }))
	if err != nil {
		return err
	}

	sets, _ := cmd.Flags().GetStringArray("set")
	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set %q: want name=value", kv)
		}
		if err := f.Set(name, value); err != nil {
			return fmt.Errorf("%w (fields: %s)", err, strings.Join(f.Names(), ", "))
		}
	}

	if err := u.Save(ctx); err != nil {
		var invalid *form.InvalidError
		if errors.As(err, &invalid) {
			return fmt.Errorf("%s not saved, %w", e.entity, err)
		}
		return err
	}
	if saved {
		fmt.Fprintf(s.out, "%s saved\n", e.entity)
	}
	return nil
}

func (e entityCLI[T, P]) remove(cmd *cobra.Command, s *session, id string) error {
	ctx := cmd.Context()
	record, err := e.resolve(ctx, s, id+"/view")
	if err != nil {
		return err
	}
	d := screen.NewDeleteDialog[T, P](e.resource(s.client), record)

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		yes = confirm(cmd.InOrStdin(), s.out, fmt.Sprintf("Delete %s %s? [y/N] ", e.entity, id))
	}
	if !yes {
		fmt.Fprintln(s.out, d.Cancel())
		return nil
	}

	outcome, err := d.ConfirmDelete(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s %s %s\n", e.entity, id, outcome)
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	}
	return false
}
