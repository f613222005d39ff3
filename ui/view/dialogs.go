package view

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/boxlabel-go/ui/images"
	"github.com/soocke/boxlabel-go/ui/presenter"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// Dialogs opens modal prompts and message boxes. Every method blocks in a nested Tk
// event loop until the window closes, so callers stay on the UI thread.
type Dialogs struct {
	logger *slog.Logger
}

func NewDialogs(logger *slog.Logger) *Dialogs { return &Dialogs{logger: logger} }

// AskString prompts for one line of text. ok is false when the prompt was cancelled.
func (d *Dialogs) AskString(title, prompt string) (string, bool) {
	win := App.Toplevel(Borderwidth(2))
	win.WmTitle(title)
	lbl := win.Label(Txt(prompt), Anchor("w"))
	Grid(lbl, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("2m"), Pady("1m"))
	entry := win.Text(Height(1), Width(32))
	Grid(entry, Row(1), Column(0), Columnspan(2), Sticky("we"), Padx("2m"), Pady("0.5m"))

	var value string
	ok := false
	closed := false
	finish := func(accept bool) {
		if closed {
			return
		}
		closed = true
		if accept {
			value = textValue(entry)
			ok = true
		}
		Destroy(win)
	}
	okBtn := win.Button(Txt("OK [Enter]"), Command(func() { finish(true) }))
	Grid(okBtn, Row(2), Column(0), Sticky("we"), Padx("0.5m"), Pady("1m"))
	cancelBtn := win.Button(Txt("Cancel [Esc]"), Command(func() { finish(false) }))
	Grid(cancelBtn, Row(2), Column(1), Sticky("we"), Padx("0.5m"), Pady("1m"))
	Bind(win, "<Return>", Command(func() { finish(true) }))
	Bind(win, "<Escape>", Command(func() { finish(false) }))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", func() { finish(false) })
	WmAttributes(win.Window, "-topmost", 1)
	Focus(entry)
	win.Wait()
	return value, ok
}

// AskInteger prompts until the user enters an integer or cancels.
func (d *Dialogs) AskInteger(title, prompt string) (int, bool) {
	for {
		s, ok := d.AskString(title, prompt)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, true
		}
		d.ShowError(title, "Please enter a whole number.")
	}
}

// ShowInfo shows an informational message box.
func (d *Dialogs) ShowInfo(title, msg string) {
	MessageBox(Icon("info"), Title(title), Msg(msg))
}

// ShowError shows an error message box.
func (d *Dialogs) ShowError(title, msg string) {
	if d.logger != nil {
		d.logger.Debug("error dialog", "title", title, "msg", msg)
	}
	MessageBox(Icon("error"), Title(title), Msg(msg))
}

// ChooseDataset asks for the dataset root directory; "" when cancelled.
func (d *Dialogs) ChooseDataset() string {
	return strings.TrimSpace(ChooseDirectory(Title("Select dataset folder")))
}

// ShowBoxMenu opens the per-box options window: a crop of the box, its class and the
// delete / change class actions.
func (d *Dialogs) ShowBoxMenu(m presenter.BoxMenu) {
	win := App.Toplevel(Borderwidth(2))
	win.WmTitle("Annotation Options")
	var photo *Img
	closed := false
	closeWin := func() {
		if closed {
			return
		}
		closed = true
		Destroy(win)
		if photo != nil {
			photo.Delete()
		}
	}

	row := 0
	if m.Thumb != nil {
		photo = NewPhoto(Data(images.EncodePNG(m.Thumb)))
		thumb := win.Label(Image(photo), Borderwidth(1), Relief("sunken"))
		Grid(thumb, Row(row), Column(0), Padx("2m"), Pady("1m"))
		row++
	}
	cls := win.Label(Txt("Class: " + m.Class))
	Grid(cls, Row(row), Column(0), Sticky("w"), Padx("2m"), Pady("0.5m"))
	row++
	del := win.Button(Txt("Delete Annotation"), Command(func() {
		closeWin()
		if m.OnDelete != nil {
			m.OnDelete()
		}
	}))
	Grid(del, Row(row), Column(0), Sticky("we"), Padx("2m"), Pady("0.3m"))
	row++
	change := win.Button(Txt("Change Class"), Command(func() {
		closeWin()
		if name, ok := d.askClass(m.Class, m.Classes); ok && m.OnChangeClass != nil {
			m.OnChangeClass(name)
		}
	}))
	Grid(change, Row(row), Column(0), Sticky("we"), Padx("2m"), Pady("0.3m"))
	row++
	exit := win.Button(Txt("Close [Esc]"), Command(closeWin))
	Grid(exit, Row(row), Column(0), Sticky("we"), Padx("2m"), Pady("0.3m"))
	Bind(win, "<Escape>", Command(closeWin))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", closeWin)
	win.Wait()
}

// askClass lets the user pick an existing class or type a new one. A typed name wins.
func (d *Dialogs) askClass(current string, classes []string) (string, bool) {
	win := App.Toplevel(Borderwidth(2))
	win.WmTitle("Change Class")
	lbl := win.Label(Txt("Select class:"), Anchor("w"))
	Grid(lbl, Row(0), Column(0), Columnspan(2), Sticky("w"), Padx("2m"), Pady("0.5m"))
	values := classes
	if len(values) == 0 {
		values = []string{"<none>"}
	}
	combo := win.TCombobox(Values(values), Width(28))
	Grid(combo, Row(1), Column(0), Columnspan(2), Sticky("we"), Padx("2m"), Pady("0.5m"))
	for i, c := range classes {
		if c == current {
			combo.Current(i)
			break
		}
	}
	newLbl := win.Label(Txt("Or add new class:"), Anchor("w"))
	Grid(newLbl, Row(2), Column(0), Columnspan(2), Sticky("w"), Padx("2m"), Pady("0.5m"))
	entry := win.Text(Height(1), Width(28))
	Grid(entry, Row(3), Column(0), Columnspan(2), Sticky("we"), Padx("2m"), Pady("0.5m"))

	var name string
	ok := false
	closed := false
	finish := func(accept bool) {
		if closed {
			return
		}
		closed = true
		if accept {
			name = textValue(entry)
			if name == "" {
				if idx, err := strconv.Atoi(combo.Current(nil)); err == nil && idx >= 0 && idx < len(classes) {
					name = classes[idx]
				}
			}
			ok = name != ""
		}
		Destroy(win)
	}
	save := win.Button(Txt("Save"), Command(func() { finish(true) }))
	Grid(save, Row(4), Column(0), Sticky("we"), Padx("0.5m"), Pady("1m"))
	cancel := win.Button(Txt("Cancel"), Command(func() { finish(false) }))
	Grid(cancel, Row(4), Column(1), Sticky("we"), Padx("0.5m"), Pady("1m"))
	Bind(win, "<Escape>", Command(func() { finish(false) }))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", func() { finish(false) })
	win.Wait()
	return name, ok
}

// textValue returns the trimmed content of a one-line Text widget.
func textValue(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}
