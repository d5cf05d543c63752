// Package history keeps an audit trail of every group's store. Each
// group data directory is a git repository; the record store and
// blueprints are committed after a blueprint regeneration or a
// successfully applied edit diff, with the edit summary as the commit
// message.
package history

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitInfo is one history entry, hash shortened for display.
type CommitInfo struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	baseDir string
	lockMu  sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(baseDir string) *Service {
	return &Service{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}
}

// EnsureRepo initializes the group repository if the directory is not
// one yet. Existing repos are left alone.
func (s *Service) EnsureRepo(group string) error {
	lock := s.groupLock(group)
	lock.Lock()
	defer lock.Unlock()

	path := s.groupPath(group)
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat group repo: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create group dir: %w", err)
	}
	if _, err := git.PlainInit(path, false); err != nil {
		return fmt.Errorf("init group repo: %w", err)
	}
	return nil
}

// Commit stages the store files and records one history entry. Paths
// are relative to the group directory; a missing optional path (no
// blueprints yet) is skipped. Committing with nothing changed is a
// no-op returning the current head.
func (s *Service) Commit(group, author, message string, paths ...string) (CommitInfo, error) {
	lock := s.groupLock(group)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.groupPath(group))
	if err != nil {
		return CommitInfo{}, fmt.Errorf("open group repo: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return CommitInfo{}, fmt.Errorf("open worktree: %w", err)
	}

	staged := 0
	for _, rel := range paths {
		if _, err := os.Stat(filepath.Join(s.groupPath(group), rel)); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if _, err := worktree.Add(rel); err != nil {
			return CommitInfo{}, fmt.Errorf("git add %s: %w", rel, err)
		}
		staged++
	}
	if staged == 0 {
		return CommitInfo{}, fmt.Errorf("nothing to commit for group %s", group)
	}

	status, err := worktree.Status()
	if err != nil {
		return CommitInfo{}, fmt.Errorf("worktree status: %w", err)
	}
	if status.IsClean() {
		return s.head(repo)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author,
			Email: fmt.Sprintf("%s@localfile.local", sanitizeEmail(author)),
			When:  time.Now(),
		},
	})
	if err != nil {
		return CommitInfo{}, fmt.Errorf("commit store: %w", err)
	}
	commitObj, err := repo.CommitObject(hash)
	if err != nil {
		return CommitInfo{}, fmt.Errorf("read commit object: %w", err)
	}
	return toCommitInfo(commitObj), nil
}

// History lists recent entries, newest first.
func (s *Service) History(group string, limit int) ([]CommitInfo, error) {
	lock := s.groupLock(group)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.groupPath(group))
	if err != nil {
		return nil, fmt.Errorf("open group repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve head: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	items := make([]CommitInfo, 0, limit)
	count := 0
	err = iter.ForEach(func(commitObj *object.Commit) error {
		items = append(items, toCommitInfo(commitObj))
		count++
		if limit > 0 && count >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

// FileAt reads one store file as it was at a commit, accepting full or
// abbreviated hashes.
func (s *Service) FileAt(group, hash, rel string) ([]byte, error) {
	lock := s.groupLock(group)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.groupPath(group))
	if err != nil {
		return nil, fmt.Errorf("open group repo: %w", err)
	}
	resolved, err := resolveHash(repo, hash)
	if err != nil {
		return nil, err
	}
	commitObj, err := repo.CommitObject(resolved)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", hash, err)
	}
	file, err := commitObj.File(rel)
	if err != nil {
		return nil, fmt.Errorf("load %s from commit: %w", rel, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("open file reader: %w", err)
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (s *Service) head(repo *git.Repository) (CommitInfo, error) {
	head, err := repo.Head()
	if err != nil {
		return CommitInfo{}, fmt.Errorf("resolve head: %w", err)
	}
	commitObj, err := repo.CommitObject(head.Hash())
	if err != nil {
		return CommitInfo{}, fmt.Errorf("read head commit: %w", err)
	}
	return toCommitInfo(commitObj), nil
}

func (s *Service) groupPath(group string) string {
	return filepath.Join(s.baseDir, group)
}

func (s *Service) groupLock(group string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[group]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[group] = lock
	return lock
}

func toCommitInfo(commitObj *object.Commit) CommitInfo {
	return CommitInfo{
		Hash:      commitObj.Hash.String()[:7],
		Message:   commitObj.Message,
		Author:    commitObj.Author.Name,
		CreatedAt: commitObj.Author.When,
	}
}

func sanitizeEmail(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
			continue
		}
		if r == ' ' || r == '-' || r == '_' {
			out = append(out, '.')
		}
	}
	if len(out) == 0 {
		return "user"
	}
	return string(out)
}

func resolveHash(repo *git.Repository, hash string) (plumbing.Hash, error) {
	if len(hash) == 40 {
		return plumbing.NewHash(hash), nil
	}
	resolved, err := repo.ResolveRevision(plumbing.Revision(hash))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve hash %s: %w", hash, err)
	}
	return *resolved, nil
}
