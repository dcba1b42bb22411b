package structure

import (
	"context"

	"github.com/loctree/loctree/internal/commands"
	"github.com/loctree/loctree/internal/document"
	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/internal/tree"
	"github.com/loctree/loctree/pkg/interfaces"
)

// Handlers bundles one configured command handler per structural operation,
// all delegating to the tree's active document.
type Handlers struct {
	AddCategory         *commands.Handler[AddCategoryMessage]
	AddResource         *commands.Handler[AddResourceMessage]
	RenameElement       *commands.Handler[RenameElementMessage]
	DeleteElements      *commands.Handler[DeleteElementsMessage]
	DuplicateElement    *commands.Handler[DuplicateElementMessage]
	AddLanguage         *commands.Handler[AddLanguageMessage]
	DeleteLanguage      *commands.Handler[DeleteLanguageMessage]
	MarkPrimaryLanguage *commands.Handler[MarkPrimaryLanguageMessage]
	ToggleLanguages     *commands.Handler[ToggleLanguagesMessage]
	ShowProperties      *commands.Handler[ShowPropertiesMessage]
	RunGenerator        *commands.Handler[RunGeneratorMessage]
	Find                *commands.Handler[FindMessage]
}

// NewHandlers wires the structural command set against one tree context.
func NewHandlers(t *tree.Context, logger interfaces.Logger) *Handlers {
	logger = commands.EnsureLogger(logger)

	active := func() (*document.Context, error) {
		doc := t.Active()
		if doc == nil {
			return nil, tree.ErrNoActiveDocument
		}
		return doc, nil
	}

	return &Handlers{
		AddCategory: commands.NewHandler[AddCategoryMessage](
			func(ctx context.Context, _ AddCategoryMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				return doc.AddCategory(ctx)
			},
			commands.WithLogger[AddCategoryMessage](logger),
			commands.WithOperation[AddCategoryMessage]("structure.add_category"),
		),
		AddResource: commands.NewHandler[AddResourceMessage](
			func(ctx context.Context, msg AddResourceMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				return doc.AddResource(ctx, msg.Parent.Ref())
			},
			commands.WithLogger[AddResourceMessage](logger),
			commands.WithOperation[AddResourceMessage]("structure.add_resource"),
		),
		RenameElement: commands.NewHandler[RenameElementMessage](
			func(ctx context.Context, msg RenameElementMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				return doc.RenameElement(ctx, msg.Target.Ref())
			},
			commands.WithLogger[RenameElementMessage](logger),
			commands.WithOperation[RenameElementMessage]("structure.rename_element"),
		),
		DeleteElements: commands.NewHandler[DeleteElementsMessage](
			func(ctx context.Context, msg DeleteElementsMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				refs := make([]model.Ref, 0, len(msg.Targets))
				for _, target := range msg.Targets {
					refs = append(refs, target.Ref())
				}
				if len(refs) == 0 {
					refs = t.SelectedRefs()
				}
				return doc.DeleteElements(ctx, refs)
			},
			commands.WithLogger[DeleteElementsMessage](logger),
			commands.WithOperation[DeleteElementsMessage]("structure.delete_elements"),
		),
		DuplicateElement: commands.NewHandler[DuplicateElementMessage](
			func(ctx context.Context, msg DuplicateElementMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				return doc.DuplicateElement(ctx, msg.Target.Ref())
			},
			commands.WithLogger[DuplicateElementMessage](logger),
			commands.WithOperation[DuplicateElementMessage]("structure.duplicate_element"),
		),
		AddLanguage: commands.NewHandler[AddLanguageMessage](
			func(ctx context.Context, _ AddLanguageMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				return doc.AddLanguage(ctx)
			},
			commands.WithLogger[AddLanguageMessage](logger),
			commands.WithOperation[AddLanguageMessage]("structure.add_language"),
		),
		DeleteLanguage: commands.NewHandler[DeleteLanguageMessage](
			func(ctx context.Context, msg DeleteLanguageMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				return doc.DeleteLanguage(ctx, msg.Code)
			},
			commands.WithLogger[DeleteLanguageMessage](logger),
			commands.WithOperation[DeleteLanguageMessage]("structure.delete_language"),
		),
		MarkPrimaryLanguage: commands.NewHandler[MarkPrimaryLanguageMessage](
			func(ctx context.Context, msg MarkPrimaryLanguageMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				return doc.MarkPrimaryLanguage(ctx, msg.Code)
			},
			commands.WithLogger[MarkPrimaryLanguageMessage](logger),
			commands.WithOperation[MarkPrimaryLanguageMessage]("structure.mark_primary_language"),
		),
		ToggleLanguages: commands.NewHandler[ToggleLanguagesMessage](
			func(ctx context.Context, _ ToggleLanguagesMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				doc.ToggleLanguagesVisible(ctx)
				return nil
			},
			commands.WithLogger[ToggleLanguagesMessage](logger),
			commands.WithOperation[ToggleLanguagesMessage]("structure.toggle_languages"),
		),
		ShowProperties: commands.NewHandler[ShowPropertiesMessage](
			func(ctx context.Context, _ ShowPropertiesMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				return doc.ShowModelProperties(ctx)
			},
			commands.WithLogger[ShowPropertiesMessage](logger),
			commands.WithOperation[ShowPropertiesMessage]("structure.show_properties"),
		),
		RunGenerator: commands.NewHandler[RunGeneratorMessage](
			func(ctx context.Context, _ RunGeneratorMessage) error {
				doc, err := active()
				if err != nil {
					return err
				}
				return doc.RunCodeGenerator(ctx)
			},
			commands.WithLogger[RunGeneratorMessage](logger),
			commands.WithOperation[RunGeneratorMessage]("structure.run_generator"),
			// Generation legitimately outlives the default ceiling when a
			// healing prompt waits on the user.
			commands.WithTimeout[RunGeneratorMessage](0),
		),
		Find: commands.NewHandler[FindMessage](
			func(ctx context.Context, msg FindMessage) error {
				t.AdvancedFind(ctx, msg.Query)
				return nil
			},
			commands.WithLogger[FindMessage](logger),
			commands.WithOperation[FindMessage]("structure.find"),
		),
	}
}
