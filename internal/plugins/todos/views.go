package todos

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/reverie/internal/templates/layouts"
)

// TodoPage is the task manager.
func TodoPage(tasks []Task, errMsg string) templ.Component {
	return layouts.Page("Tasks", layouts.Component(func(h *layouts.HTML) {
		h.Raw(`<header class="header-nav"><div><h1 class="title-gradient">Task Manager</h1><p>`,
			strconv.Itoa(Pending(tasks)), ` pending</p></div>`,
			`<a href="/home" class="btn btn-glass">Back</a></header>`)

		if errMsg != "" {
			h.Raw(`<div class="flash flash-error" role="alert">`)
			h.Text(errMsg)
			h.Raw(`</div>`)
		}

		h.Raw(`<section class="glass-card todos"><form method="post" action="/todo" class="todo-add">`)
		h.CSRFField()
		h.Raw(`<input type="text" name="text" maxlength="`, strconv.Itoa(MaxTaskLength),
			`" placeholder="What needs doing?" required autofocus>`,
			`<button type="submit" class="btn btn-primary">Add</button></form>`)

		if len(tasks) == 0 {
			h.Raw(`<p class="empty-state">All caught up!</p></section>`)
			return
		}

		h.Raw(`<ul class="todo-list">`)
		for _, t := range tasks {
			h.Render(taskItem(t))
		}
		h.Raw(`</ul></section>`)
	}))
}

func taskItem(t Task) templ.Component {
	return layouts.Component(func(h *layouts.HTML) {
		base := "/todo/" + t.ID
		h.Raw(`<li class="todo-item`)
		if t.Completed {
			h.Raw(` completed`)
		}
		h.Raw(`"><form method="post" action="`)
		h.Text(base + "/toggle")
		h.Raw(`" class="inline">`)
		h.CSRFField()
		h.Raw(`<button type="submit" class="check" aria-label="Toggle task" aria-pressed="`,
			strconv.FormatBool(t.Completed), `">`)
		if t.Completed {
			h.Raw(`&#10003;`)
		}
		h.Raw(`</button></form><form method="post" action="`)
		h.Text(base + "/edit")
		h.Raw(`" class="inline todo-edit">`)
		h.CSRFField()
		h.Raw(`<input type="text" name="text" aria-label="Task text" value="`)
		h.Text(t.Text)
		h.Raw(`"></form><form method="post" action="`)
		h.Text(base + "/delete")
		h.Raw(`" class="inline">`)
		h.CSRFField()
		h.Raw(`<button type="submit" class="btn btn-danger" aria-label="Delete task">&times;</button></form></li>`)
	})
}
