package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"school-admin/internal/api"
	"school-admin/internal/i18n"
	"school-admin/internal/views"
)

// fieldKind says how a flag value is converted before it lands in the input JSON
type fieldKind int

const (
	textField fieldKind = iota
	upperField
	integerField
	numberField
	itemsField
)

// inputField exposes one JSON field of a form as a command flag
type inputField struct {
	key   string
	kind  fieldKind
	usage string
}

// flag returns the flag name: the JSON key in kebab case
func (f inputField) flag() string {
	if f.kind == itemsField {
		return "item"
	}
	return flagName(f.key)
}

// resourceCommand builds list/get/create/update/delete for one backend
// collection. T is the record, I the form payload it is edited through.
type resourceCommand[T any, I any] struct {
	use      string
	aliases  []string
	short    string
	noun     string
	resource func(*api.Client) *api.Resource[T]
	// fields lists the editable fields; none makes the resource read-only
	fields []inputField
	// listFlags adds resource-specific list filters
	listFlags func(*cobra.Command)
	// list fetches, filters and prints the collection
	list func(ctx context.Context, a *app, cmd *cobra.Command, items []T) error
	show func(a *app, item *T) error
}

func (r resourceCommand[T, I]) command() *cobra.Command {
	parent := &cobra.Command{
		Use:     r.use,
		Aliases: r.aliases,
		Short:   r.short,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List " + r.use,
		Args:    cobra.NoArgs,
		RunE:    r.runList,
	}
	listCmd.Flags().String("search", "", "Only show entries matching every word")
	if r.listFlags != nil {
		r.listFlags(listCmd)
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE:  r.runGet,
	}
	parent.AddCommand(listCmd, getCmd)

	if len(r.fields) == 0 {
		return parent
	}

	createCmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"add"},
		Short:   "Create an entry",
		Args:    cobra.NoArgs,
		RunE:    r.runCreate,
	}
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an entry; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE:  r.runUpdate,
	}
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		for _, f := range r.fields {
			if f.kind == itemsField {
				c.Flags().StringArray(f.flag(), nil, f.usage)
			} else {
				c.Flags().String(f.flag(), "", f.usage)
			}
		}
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"del", "rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE:    r.runDelete,
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	parent.AddCommand(createCmd, updateCmd, deleteCmd)
	return parent
}

func (r resourceCommand[T, I]) runList(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var state views.ListState[T]
	err = state.Load(cmd.Context(), func(ctx context.Context) ([]T, error) {
		return r.resource(a.client).List(ctx, nil)
	})
	if err != nil {
		return a.fail(err)
	}

	return r.list(cmd.Context(), a, cmd, state.Items())
}

func (r resourceCommand[T, I]) runGet(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := validateAndParseID(args[0])
	if err != nil {
		return a.fail(err)
	}

	item, err := r.resource(a.client).Get(cmd.Context(), id)
	if err != nil {
		return a.fail(err)
	}
	return r.show(a, item)
}

func (r resourceCommand[T, I]) runCreate(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	input, err := buildInput[I](nil, cmd.Flags(), r.fields)
	if err != nil {
		return a.fail(err)
	}

	var created *T
	err = r.submit(cmd.Context(), a, input, a.catalog.T(i18n.MsgCreated, a.catalog.T(r.noun)), func(ctx context.Context) error {
		item, err := r.resource(a.client).Create(ctx, input)
		created = item
		return err
	})
	if err != nil {
		return err
	}
	if created == nil {
		return nil
	}
	return r.show(a, created)
}

func (r resourceCommand[T, I]) runUpdate(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := validateAndParseID(args[0])
	if err != nil {
		return a.fail(err)
	}

	current, err := r.resource(a.client).Get(cmd.Context(), id)
	if err != nil {
		return a.fail(err)
	}

	input, err := buildInput[I](current, cmd.Flags(), r.fields)
	if err != nil {
		return a.fail(err)
	}

	var updated *T
	err = r.submit(cmd.Context(), a, input, a.catalog.T(i18n.MsgUpdated, a.catalog.T(r.noun)), func(ctx context.Context) error {
		item, err := r.resource(a.client).Update(ctx, id, input)
		updated = item
		return err
	})
	if err != nil {
		return err
	}
	if updated == nil {
		if updated, err = r.resource(a.client).Get(cmd.Context(), id); err != nil {
			a.logger.Warn("Failed to reload updated record", "id", id, "error", err)
			return nil
		}
	}
	return r.show(a, updated)
}

func (r resourceCommand[T, I]) runDelete(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := validateAndParseID(args[0])
	if err != nil {
		return a.fail(err)
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Fprint(cmd.ErrOrStderr(), a.catalog.T(i18n.MsgDeleteConfirm, a.catalog.T(r.noun), strconv.FormatInt(id, 10)))
		answer, _ := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !confirmed(answer) {
			a.formatter.PrintInfo(a.catalog.T(i18n.MsgDeleteCancelled))
			return nil
		}
	}

	return a.mutation().Run(cmd.Context(), a.catalog.T(i18n.MsgDeleted, a.catalog.T(r.noun)), func(ctx context.Context) error {
		return r.resource(a.client).Delete(ctx, id)
	})
}

// submit validates input, then sends it through a mutation. Invalid input
// never reaches the backend.
func (r resourceCommand[T, I]) submit(ctx context.Context, a *app, input *I, success string, send func(context.Context) error) error {
	if err := a.validator.Struct(input); err != nil {
		a.notifier.Failure(err)
		return err
	}
	return a.mutation().Run(ctx, success, send)
}

// buildInput decodes a form payload from base (the current record, may be
// nil) overlaid with the flags that were set
func buildInput[I any](base interface{}, flags *pflag.FlagSet, fields []inputField) (*I, error) {
	values := map[string]interface{}{}
	if base != nil {
		data, err := json.Marshal(base)
		if err != nil {
			return nil, fmt.Errorf("failed to encode current values: %w", err)
		}
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to decode current values: %w", err)
		}
	}

	for _, f := range fields {
		if !flags.Changed(f.flag()) {
			continue
		}

		if f.kind == itemsField {
			raw, err := flags.GetStringArray(f.flag())
			if err != nil {
				return nil, err
			}
			items, err := parseItems(raw)
			if err != nil {
				return nil, err
			}
			values[f.key] = items
			continue
		}

		raw, err := flags.GetString(f.flag())
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)

		switch f.kind {
		case upperField:
			values[f.key] = strings.ToUpper(raw)
		case integerField:
			if raw == "" {
				delete(values, f.key)
				continue
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("--%s: %q is not a whole number", f.flag(), raw)
			}
			values[f.key] = n
		case numberField:
			if raw == "" {
				delete(values, f.key)
				continue
			}
			n, err := parseNumber(raw)
			if err != nil {
				return nil, fmt.Errorf("--%s: %q is not a number", f.flag(), raw)
			}
			values[f.key] = n
		default:
			values[f.key] = raw
		}
	}

	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode input: %w", err)
	}
	var input I
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return &input, nil
}

// parseItems reads "description:quantity:unit amount" invoice lines
func parseItems(raw []string) ([]map[string]interface{}, error) {
	items := make([]map[string]interface{}, 0, len(raw))
	for _, line := range raw {
		parts := strings.Split(line, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid item %q: expected description:quantity:unit", line)
		}
		qty, err := parseNumber(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in item %q", line)
		}
		unit, err := parseNumber(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid unit amount in item %q", line)
		}
		items = append(items, map[string]interface{}{
			"description": strings.TrimSpace(parts[0]),
			"quantity":    qty,
			"unitAmount":  unit,
		})
	}
	return items, nil
}

// parseNumber accepts "1500", "1 500", "1500.5" and "1500,5"
func parseNumber(s string) (float64, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// flagName converts a camelCase JSON key to a kebab-case flag name
func flagName(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// confirmed accepts yes in French or English
func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "o", "oui":
		return true
	}
	return false
}
