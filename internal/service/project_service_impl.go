package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/derby/internal/db"
	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
	uow      db.UnitOfWork
	now      Clock
	observer UseCaseObserver
}

func NewProjectService(projects repository.ProjectRepo, uow db.UnitOfWork, clock Clock, observers ...UseCaseObserver) ProjectService {
	return &projectService{
		projects: projects,
		uow:      uow,
		now:      clockOrDefault(clock),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": p.Name, "background": p.IsBackground}
	defer func() { observe(ctx, s.observer, "project.create", startedAt, fields, err) }()

	p.Name = strings.TrimSpace(p.Name)
	if p.IsBackground {
		p.Priority = domain.BackgroundPriority
	} else if p.Priority == 0 {
		p.Priority = domain.DefaultPriority
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p.CreatedAt = s.now().UTC()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteProjectRepo(tx).Create(ctx, p)
	})
}

func (s *projectService) Get(ctx context.Context, name string) (*domain.Project, error) {
	p, err := s.projects.GetByName(ctx, name)
	if err != nil {
		return nil, unknownProject(err, name)
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, filter repository.ProjectFilter) ([]*domain.Project, error) {
	return s.projects.List(ctx, filter)
}

// Rename renames the project and moves its sessions, including an active
// one, in the same transaction. It returns the number of sessions moved.
func (s *projectService) Rename(ctx context.Context, oldName, newName string) (moved int64, err error) {
	startedAt := time.Now()
	fields := map[string]any{"from": oldName, "to": newName}
	defer func() { observe(ctx, s.observer, "project.rename", startedAt, fields, err) }()

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return 0, fmt.Errorf("new project name is required")
	}
	if newName == oldName {
		return 0, nil
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sessions := repository.NewSQLiteSessionRepo(tx)
		if err := repository.NewSQLiteProjectRepo(tx).Rename(ctx, oldName, newName); err != nil {
			return unknownProject(err, oldName)
		}

		// Orphaned sessions may still hold newName, so the tracking slot can
		// be taken even though no project has that name.
		oldActive, err := isTracked(ctx, sessions, oldName)
		if err != nil {
			return err
		}
		newActive, err := isTracked(ctx, sessions, newName)
		if err != nil {
			return err
		}
		if oldActive && newActive {
			return fmt.Errorf("renaming %q: %q already has an active session: %w", oldName, newName, domain.ErrAlreadyActive)
		}

		moved, err = sessions.RenameProject(ctx, oldName, newName)
		return err
	})
	if err != nil {
		return 0, err
	}
	fields["sessions"] = moved
	return moved, nil
}

func (s *projectService) SetPriority(ctx context.Context, name string, priority int) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": name, "priority": priority}
	defer func() { observe(ctx, s.observer, "project.priority", startedAt, fields, err) }()

	if err := domain.ValidatePriority(priority); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteProjectRepo(tx)
		p, err := repo.GetByName(ctx, name)
		if err != nil {
			return unknownProject(err, name)
		}
		if p.IsBackground {
			return fmt.Errorf("setting priority of %q: %w", name, domain.ErrBackgroundTask)
		}
		return repo.UpdatePriority(ctx, name, priority)
	})
}

// Delete removes the project. Its sessions stay behind as orphans unless
// deleteSessions is set; keeping them is refused while one is still active. It returns the number of sessions deleted.
func (s *projectService) Delete(ctx context.Context, name string, deleteSessions bool) (deleted int64, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": name, "delete_sessions": deleteSessions}
	defer func() { observe(ctx, s.observer, "project.delete", startedAt, fields, err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sessions := repository.NewSQLiteSessionRepo(tx)
		if err := repository.NewSQLiteProjectRepo(tx).Delete(ctx, name); err != nil {
			return unknownProject(err, name)
		}
		if deleteSessions {
			deleted, err = sessions.DeleteByProject(ctx, name)
			return err
		}

		tracked, err := isTracked(ctx, sessions, name)
		if err != nil {
			return err
		}
		if tracked {
			return fmt.Errorf("deleting %q: stop its active session first: %w", name, domain.ErrAlreadyActive)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	fields["sessions"] = deleted
	return deleted, nil
}

func (s *projectService) AddTag(ctx context.Context, name, tag string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "project.tag_add", startedAt, map[string]any{"project": name, "tag": tag}, err)
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return unknownProject(repository.NewSQLiteProjectRepo(tx).AddTag(ctx, name, tag), name)
	})
}

func (s *projectService) RemoveTag(ctx context.Context, name, tag string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "project.tag_remove", startedAt, map[string]any{"project": name, "tag": tag}, err)
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteProjectRepo(tx).RemoveTag(ctx, name, tag)
	})
}

func (s *projectService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.projects.ListTags(ctx)
}
