package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/marzolo/thoughts-bot/internal/constants"
	"github.com/marzolo/thoughts-bot/internal/models"
)

// GitPublisher writes the record into the content directory of a local site
// checkout, then stages, commits and pushes it. The push authenticates with
// a dedicated deploy key only: ambient agent credentials are explicitly
// disabled so the bot can never push with someone else's identity.
type GitPublisher struct {
	RepoDir    string // site checkout; git commands run here
	ContentDir string // relative to RepoDir
	Branch     string
	SSHKeyPath string
}

// NewGitPublisher returns the local commit+push strategy.
func NewGitPublisher(repoDir, contentDir, branch, sshKeyPath string) *GitPublisher {
	return &GitPublisher{
		RepoDir:    repoDir,
		ContentDir: contentDir,
		Branch:     branch,
		SSHKeyPath: sshKeyPath,
	}
}

// Publish writes the record and pushes it. A failure after the file exists
// on disk is reported as partial so the admin can finish the push by hand.
func (g *GitPublisher) Publish(ctx context.Context, kind string, rec models.ThoughtRecord) error {
	path, err := g.WriteRecord(rec)
	if err != nil {
		return &PublishError{Err: err}
	}
	log.Printf("GitPublisher: wrote %s record to %s", kind, path)

	if err := g.gitPush(ctx, rec.Datetime); err != nil {
		return &PublishError{Partial: true, Path: path, Err: err}
	}
	return nil
}

// WriteRecord writes the record under <ContentDir>/<YYYY-MM>/<timestamp>.json
// and returns the path. The directory partitioning and file naming mirror
// what the site's content collection globs for.
func (g *GitPublisher) WriteRecord(rec models.ThoughtRecord) (string, error) {
	ts := strings.TrimSuffix(rec.Datetime, "Z")
	parsed, err := time.Parse("2006-01-02T15:04:05", ts)
	if err != nil {
		return "", fmt.Errorf("bad record timestamp %q: %w", rec.Datetime, err)
	}

	dir := filepath.Join(g.RepoDir, g.ContentDir, parsed.Format("2006-01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating content dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}

	path := filepath.Join(dir, ts+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}
	return path, nil
}

// gitPush stages the content directory, commits with the fixed bot identity
// and pushes to the configured branch using only the deploy key.
func (g *GitPublisher) gitPush(ctx context.Context, timestamp string) error {
	if err := g.run(ctx, nil, "git", "add", g.ContentDir); err != nil {
		return err
	}

	author := fmt.Sprintf("%s <%s>", constants.GIT_USER, constants.GIT_EMAIL)
	message := fmt.Sprintf("Add thought %s from Telegram bot", timestamp)
	commitEnv := []string{
		"GIT_COMMITTER_NAME=" + constants.GIT_USER,
		"GIT_COMMITTER_EMAIL=" + constants.GIT_EMAIL,
	}
	if err := g.run(ctx, commitEnv, "git", "commit", "--author", author, "-m", message); err != nil {
		return err
	}

	sshCmd := fmt.Sprintf("ssh -i %q -o IdentitiesOnly=yes -o AddKeysToAgent=no", g.SSHKeyPath)
	pushEnv := []string{"GIT_SSH_COMMAND=" + sshCmd}
	return g.run(ctx, pushEnv, "git", "push", "-u", "origin", g.Branch)
}

// run executes one git command in the repo dir. extraEnv is appended to a
// copy of the process environment with SSH_AUTH_SOCK stripped, blocking any
// agent access.
func (g *GitPublisher) run(ctx context.Context, extraEnv []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = g.RepoDir

	env := make([]string, 0, len(os.Environ())+len(extraEnv))
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "SSH_AUTH_SOCK=") {
			continue
		}
		env = append(env, kv)
	}
	cmd.Env = append(env, extraEnv...)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s %s: %w (%s)", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}
