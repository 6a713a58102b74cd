package others

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/gc"
	"github.com/wstrucke/scs/vcs"
)

type Handler struct {
	cmdcore.BaseHandler
}

func (h Handler) Abort(cmd *cobra.Command, _ []string) error {
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	return gc.NewSentinel(conf.AbortFile()).Clear()
}

func (h Handler) Cancel(cmd *cobra.Command, _ []string) error {
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	repo, err := vcs.Open(conf.ConfDir)
	if err != nil {
		return err
	}
	if err := repo.DiscardChanges(); err != nil {
		return err
	}
	if err := gc.NewSentinel(conf.AbortFile()).Clear(); err != nil {
		return err
	}
	l, err := h.BaseHandler.Lock()
	if err != nil {
		return err
	}
	return l.Release()
}

func (h Handler) Commit(cmd *cobra.Command, args []string) error {
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	repo, err := vcs.Open(conf.ConfDir)
	if err != nil {
		return err
	}
	message := "scs update"
	if len(args) > 0 {
		message = args[0]
	}
	user := cmdcore.CurrentUser()
	if _, err := repo.Commit(message, user, user+"@localhost"); err != nil {
		return err
	}
	if push, _ := cmd.Flags().GetBool("push"); push {
		if err := repo.Push("working"); err != nil {
			return err
		}
	}
	l, err := h.BaseHandler.Lock()
	if err != nil {
		return err
	}
	return l.Release()
}

func (h Handler) Diff(cmd *cobra.Command, _ []string) error {
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	repo, err := vcs.Open(conf.ConfDir)
	if err != nil {
		return err
	}
	st, err := repo.Status()
	if err != nil {
		return err
	}
	for _, name := range vcs.DiffNames(st) {
		fmt.Println(name)
	}
	return nil
}

func (h Handler) Dir(cmd *cobra.Command, _ []string) error {
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	fmt.Println(conf.ConfDir)
	return nil
}

func (h Handler) Pdir(cmd *cobra.Command, _ []string) error {
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Dir(conf.ConfDir))
	return nil
}

// Lock performs start_modify: acquire (or reaffirm) the lock for the current
// user.
func (h Handler) Lock(cmd *cobra.Command, _ []string) error {
	l, err := h.BaseHandler.Lock()
	if err != nil {
		return err
	}
	return l.StartModify(cmdcore.CommandContext(cmd), cmdcore.CurrentUser())
}

func (h Handler) Log(cmd *cobra.Command, _ []string) error {
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	repo, err := vcs.Open(conf.ConfDir)
	if err != nil {
		return err
	}
	max, _ := cmd.Flags().GetInt("max")
	entries, err := repo.Log(max)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s %-20s %s  %s\n", e.Hash[:8], e.Author, e.When.Format("2006-01-02 15:04"), e.Subject) //nolint:mnd
	}
	return nil
}

// Status exits 1 when locked, per the global-verb exit-code contract.
func (h Handler) Status(cmd *cobra.Command, _ []string) error {
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	l, err := h.BaseHandler.Lock()
	if err != nil {
		return err
	}
	owner, locked, err := l.Status()
	if err != nil {
		return err
	}
	repo, err := vcs.Open(conf.ConfDir)
	if err != nil {
		return err
	}
	ahead, behind, err := repo.AheadBehind()
	if err != nil {
		return err
	}
	fmt.Printf("locked: %v\nowner: %s\nahead: %d\nbehind: %d\n", locked, owner, ahead, behind)
	if locked {
		os.Exit(1)
	}
	return nil
}

func (h Handler) Unlock(cmd *cobra.Command, _ []string) error {
	l, err := h.BaseHandler.Lock()
	if err != nil {
		return err
	}
	return l.Release()
}
