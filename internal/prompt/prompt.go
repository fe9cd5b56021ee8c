// Package prompt implements the interactive selection steps of the CLI.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/sigaihealth/vercelsourcerecover/pkg/models"
)

// PersonalLabel is the team option that selects the personal account.
const PersonalLabel = "Personal project (NO TEAM)"

// ErrNoChoices is returned when a selection has nothing to choose from.
var ErrNoChoices = errors.New("nothing to choose from")

// Prompter asks questions on a terminal or any reader/writer pair.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal file descriptor used for hidden input, or -1.
	fd int
}

// New creates a Prompter. When in is a terminal, secrets are read without echo.
func New(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Token asks for an access token, hiding the input on a terminal.
func (p *Prompter) Token() (string, error) {
	for {
		fmt.Fprint(p.out, "Access token: ")
		var token string
		if p.fd >= 0 {
			b, err := term.ReadPassword(p.fd)
			fmt.Fprintln(p.out)
			if err != nil {
				return "", err
			}
			token = strings.TrimSpace(string(b))
		} else {
			line, err := p.readLine()
			if err != nil {
				return "", err
			}
			token = line
		}
		if token != "" {
			return token, nil
		}
		fmt.Fprintln(p.out, "A token is required.")
	}
}

// Choose lists options and returns the index picked by the operator.
func (p *Prompter) Choose(question string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoChoices
	}
	for {
		fmt.Fprintln(p.out, question)
		for i, o := range options {
			fmt.Fprintf(p.out, "  %2d) %s\n", i+1, o)
		}
		fmt.Fprintf(p.out, "Choice [1-%d]: ", len(options))

		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

// Team asks which team to use. The empty string selects the personal account.
func (p *Prompter) Team(teams []models.Team) (string, error) {
	options := []string{PersonalLabel}
	for _, t := range teams {
		label := t.Name
		if t.Slug != "" && t.Slug != t.Name {
			label += " (" + t.Slug + ")"
		}
		options = append(options, label)
	}
	i, err := p.Choose("Select a team:", options)
	if err != nil {
		return "", err
	}
	if i == 0 {
		return "", nil
	}
	return teams[i-1].ID, nil
}

// Project asks for a project name among the deployments' distinct names,
// in the order they first appear.
func (p *Prompter) Project(deployments []models.Deployment) (string, error) {
	names := ProjectNames(deployments)
	i, err := p.Choose("Select a project:", names)
	if err != nil {
		return "", err
	}
	return names[i], nil
}

// Deployment asks for one of the project's deployments.
func (p *Prompter) Deployment(project string, deployments []models.Deployment) (models.Deployment, error) {
	var matching []models.Deployment
	var options []string
	for _, d := range deployments {
		if d.Name != project {
			continue
		}
		matching = append(matching, d)
		label := d.URL
		if d.Created > 0 {
			label += "  " + d.CreatedAt().Format(time.DateTime)
		}
		if d.State != "" {
			label += "  " + d.State
		}
		options = append(options, label)
	}
	i, err := p.Choose("Select a deployment of "+project+":", options)
	if err != nil {
		return models.Deployment{}, err
	}
	return matching[i], nil
}

// OutputDir asks where to write the files; an empty answer keeps def.
func (p *Prompter) OutputDir(def string) (string, error) {
	fmt.Fprintf(p.out, "Output directory [%s]: ", def)
	line, err := p.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// ProjectNames returns the distinct deployment names in first-seen order.
func ProjectNames(deployments []models.Deployment) []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range deployments {
		if !seen[d.Name] {
			seen[d.Name] = true
			names = append(names, d.Name)
		}
	}
	return names
}
