package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"silsilah_go/internal/family"
	"silsilah_go/internal/model"
	"silsilah_go/internal/render"
	"silsilah_go/internal/service"
)

type printOptions struct {
	root       string
	depth      int
	expandGen  int
	generation int
	parent     string
	locale     string
	spouses    bool
	public     bool
}

func newPrintCmd() *cobra.Command {
	opts := printOptions{}
	cmd := &cobra.Command{
		Use:   "print <snapshot.yaml|snapshot.json>",
		Short: "Print a family tree or a single generation from a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.root, "root", "", "root person id")
	f.IntVar(&opts.depth, "depth", -1, "maximum generations below the root (-1 for all)")
	f.IntVar(&opts.expandGen, "expand", -1, "expand nodes up to this generation (-1 for all)")
	f.IntVar(&opts.generation, "generation", -1, "print a single generation instead of the tree")
	f.StringVar(&opts.parent, "parent", "", "with --generation, only children of this person")
	f.StringVar(&opts.locale, "locale", "id", "name collation locale")
	f.BoolVar(&opts.spouses, "spouses", true, "show spouses")
	f.BoolVar(&opts.public, "public", false, "hide contact details")
	return cmd
}

func loadSnapshot(path string) (*model.Snapshot, error) {
	snap, err := model.LoadSnapshot(path)
	if err != nil {
		return nil, service.NewError(service.ErrInvalidInput, "failed to load snapshot", err)
	}
	if err := service.NewValidator().Persons(snap.Persons); err != nil {
		return nil, err
	}
	return snap, nil
}

func runPrint(cmd *cobra.Command, path string, opts printOptions) error {
	snap, err := loadSnapshot(path)
	if err != nil {
		return err
	}

	lang := service.TreeConfig{Locale: opts.locale}.Language()
	indexOpts := []family.Option{family.WithLanguage(lang)}
	if opts.expandGen >= 0 {
		indexOpts = append(indexOpts, family.WithExpandGeneration(opts.expandGen))
	}
	idx := family.NewIndex(snap.Persons, indexOpts...)
	warnings := append(idx.Warnings(), family.CheckLineage(idx)...)

	proj := family.MemberProjection
	if opts.public {
		proj = family.PublicProjection
	}

	out := cmd.OutOrStdout()
	if opts.generation >= 0 {
		state := family.ReduceDrill(family.DrillState{}, family.DrillAction{Kind: family.DrillJump, Generation: opts.generation}, idx)
		if opts.parent != "" {
			state.ParentID = opts.parent
		}
		err = render.Generation(out, state.Generation,
			family.Displayed(state, idx, proj),
			family.Breadcrumbs(state, idx))
	} else {
		root, buildWarnings := idx.Tree(
			family.WithRoot(opts.root),
			family.WithMaxDepth(opts.depth),
			family.WithProjection(proj),
		)
		warnings = append(warnings, buildWarnings...)

		ropts := render.Options{ShowSpouses: opts.spouses}
		if opts.expandGen >= 0 {
			state := family.NewExpandState(idx)
			ropts.Expanded = &state
		}
		err = render.Tree(out, root, ropts)
	}
	if err != nil {
		return err
	}

	for _, w := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w.String())
	}
	return nil
}
