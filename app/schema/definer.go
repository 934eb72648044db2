package schema

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"GoQuestionsAI/app/vectordb"
)

type Definer struct {
	store        vectordb.Interface
	logger       *zap.Logger
	skipExisting bool
}

func NewDefiner(store vectordb.Interface, logger *zap.Logger, skipExisting bool) *Definer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Definer{store: store, logger: logger, skipExisting: skipExisting}
}

// Define asks the store to create class. Unless skipExisting is set, an
// existing class is an error.
func (d *Definer) Define(ctx context.Context, class vectordb.Class) error {
	if class.Name == "" {
		return fmt.Errorf("define class: empty class name")
	}

	if d.skipExisting {
		exists, err := d.store.ClassExists(ctx, class.Name)
		if err != nil {
			return fmt.Errorf("define class %s: %w", class.Name, err)
		}
		if exists {
			d.logger.Info("⏭️ class already exists, skipping", zap.String("class", class.Name))
			return nil
		}
	}

	if err := d.store.CreateClass(ctx, class); err != nil {
		d.logger.Error("❌ class creation failed", zap.String("class", class.Name), zap.Error(err))
		return err
	}
	d.logger.Info("✅ class created",
		zap.String("class", class.Name),
		zap.String("vectorizer", class.Vectorizer),
		zap.Int("modules", len(class.ModuleConfig)))
	return nil
}
