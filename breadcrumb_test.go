package manguide

// Notes:
// - BuildCrumbs and RenderBreadcrumb are pure; Apply is tested against the
//   static document and a failing fake to cover the error branches.
// - Crumb URLs are relative to the page directory, except the root crumb
//   which carries the directory itself.

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestBuildCrumbs - Trail derivation
// ---------------------------------------------------------------------------

func TestBuildCrumbs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		title string
		want  []Crumb
	}{
		{
			name:  "three segments",
			path:  "/docs/a_b_c.html",
			title: DefaultTitle,
			want: []Crumb{
				{Name: DefaultTitle, URL: "/docs/"},
				{Name: "a", URL: "a.html"},
				{Name: "b", URL: "a_b.html"},
				{Name: "c", URL: "a_b_c.html"},
			},
		},
		{
			name:  "single segment",
			path:  "/docs/guide/quick.html",
			title: "Guide",
			want: []Crumb{
				{Name: "Guide", URL: "/docs/guide/"},
				{Name: "quick", URL: "quick.html"},
			},
		},
		{
			name:  "no directory",
			path:  "sdpctl_login.html",
			title: "Guide",
			want: []Crumb{
				{Name: "Guide", URL: ""},
				{Name: "sdpctl", URL: "sdpctl.html"},
				{Name: "login", URL: "sdpctl_login.html"},
			},
		},
		{
			name:  "trailing slash yields root only",
			path:  "/docs/",
			title: "Guide",
			want:  []Crumb{{Name: "Guide", URL: "/docs/"}},
		},
		{
			name:  "empty path yields root only",
			path:  "",
			title: "Guide",
			want:  []Crumb{{Name: "Guide", URL: ""}},
		},
		{
			name:  "no extension",
			path:  "/a_b",
			title: "Guide",
			want: []Crumb{
				{Name: "Guide", URL: "/"},
				{Name: "a", URL: "a.html"},
				{Name: "b", URL: "a_b.html"},
			},
		},
		{
			name:  "empty segments are kept",
			path:  "/x/a__b.html",
			title: "Guide",
			want: []Crumb{
				{Name: "Guide", URL: "/x/"},
				{Name: "a", URL: "a.html"},
				{Name: "", URL: "a_.html"},
				{Name: "b", URL: "a__b.html"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := BuildCrumbs(tt.path, tt.title)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildCrumbs(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestBuildCrumbs_Properties(t *testing.T) {
	t.Parallel()

	tokens := []string{
		"a", "a_b", "sdpctl_appliance_list", "x_y_z_w_v", "one_two.html",
		// Removing ".html" once would leave a new ".html" behind.
		"x.h.htmltml", "a_b..htmlhtml", "a_.h.htmltml",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			t.Parallel()

			crumbs := BuildCrumbs("/docs/"+token+".html", DefaultTitle)
			segments := strings.Split(token, "_")

			if len(crumbs) != len(segments)+1 {
				t.Fatalf("len(crumbs) = %d, want %d", len(crumbs), len(segments)+1)
			}
			for i := range segments {
				want := strings.Join(segments[:i+1], "_") + ".html"
				if crumbs[i+1].URL != want {
					t.Errorf("crumbs[%d].URL = %q, want %q", i+1, crumbs[i+1].URL, want)
				}
			}

			rendered := RenderBreadcrumb(crumbs)
			start := strings.LastIndex(rendered, `<span class="bc-current">`)
			if strings.Contains(rendered[start:], ".html") {
				t.Errorf("final label contains .html: %q", rendered[start:])
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRenderBreadcrumb - Markup
// ---------------------------------------------------------------------------

func TestRenderBreadcrumb(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		crumbs []Crumb
		want   string
	}{
		{
			name: "links then current label",
			crumbs: []Crumb{
				{Name: "Quick Start Guide", URL: "/docs/"},
				{Name: "a", URL: "a.html"},
				{Name: "b", URL: "a_b.html"},
			},
			want: `<a href="/docs/" class="bc-crumb">Quick Start Guide</a><span class="bc-seperator">/</span>` +
				`<a href="a.html" class="bc-crumb">a</a><span class="bc-seperator">/</span>` +
				`<span class="bc-current">b</span>`,
		},
		{
			name:   "root only",
			crumbs: []Crumb{{Name: "Guide", URL: "/"}},
			want:   `<span class="bc-current">Guide</span>`,
		},
		{
			name:   "html suffix stripped from label",
			crumbs: []Crumb{{Name: "Guide", URL: "/"}, {Name: "page.html", URL: "page.html.html"}},
			want:   `<a href="/" class="bc-crumb">Guide</a><span class="bc-seperator">/</span><span class="bc-current">page</span>`,
		},
		{
			name:   "html formed by stripping is stripped too",
			crumbs: []Crumb{{Name: "Guide", URL: "/"}, {Name: "x.h.htmltml", URL: "x.h.htmltml.html"}},
			want:   `<a href="/" class="bc-crumb">Guide</a><span class="bc-seperator">/</span><span class="bc-current">x</span>`,
		},
		{
			name:   "labels and urls are escaped",
			crumbs: []Crumb{{Name: "A & B", URL: `/a"b/`}, {Name: "<x>", URL: "x.html"}},
			want:   `<a href="/a&#34;b/" class="bc-crumb">A &amp; B</a><span class="bc-seperator">/</span><span class="bc-current">&lt;x&gt;</span>`,
		},
		{
			name:   "empty trail",
			crumbs: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := RenderBreadcrumb(tt.crumbs)
			if got != tt.want {
				t.Errorf("RenderBreadcrumb() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBreadcrumbBuilder_Apply - Document mutation
// ---------------------------------------------------------------------------

func TestBreadcrumbBuilder_Apply(t *testing.T) {
	t.Parallel()

	t.Run("renders three links and final label", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<div id="breadcrumb">loading</div>`)
		applied, crumbs, err := NewBreadcrumbBuilder().Apply(context.Background(), doc, "/docs/a_b_c.html")
		if err != nil {
			t.Fatalf("Apply() unexpected error: %v", err)
		}
		if !applied {
			t.Fatal("Apply() applied = false, want true")
		}
		if len(crumbs) != 4 {
			t.Errorf("len(crumbs) = %d, want 4", len(crumbs))
		}

		got := mustRender(t, doc)
		if n := strings.Count(got, `class="bc-crumb"`); n != 3 {
			t.Errorf("rendered %d links, want 3: %s", n, got)
		}
		if !strings.Contains(got, `<span class="bc-current">c</span>`) {
			t.Errorf("rendered trail missing final label: %s", got)
		}
	})

	t.Run("missing container is a silent no-op", func(t *testing.T) {
		t.Parallel()

		const page = `<main><code># x</code></main>`
		doc := mustParse(t, page)
		applied, crumbs, err := NewBreadcrumbBuilder().Apply(context.Background(), doc, "/docs/a_b.html")
		if err != nil {
			t.Fatalf("Apply() unexpected error: %v", err)
		}
		if applied || crumbs != nil {
			t.Errorf("Apply() = (%v, %v), want (false, nil)", applied, crumbs)
		}
		if got := mustRender(t, doc); got != page {
			t.Errorf("document mutated: %q", got)
		}
	})

	t.Run("applying twice is byte-identical", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<nav id="breadcrumb"></nav>`)
		b := &BreadcrumbBuilder{Title: "Guide & Co", ContainerID: "breadcrumb"}

		if _, _, err := b.Apply(context.Background(), doc, "/d/x_y.html"); err != nil {
			t.Fatalf("first Apply() unexpected error: %v", err)
		}
		first := mustRender(t, doc)
		if _, _, err := b.Apply(context.Background(), doc, "/d/x_y.html"); err != nil {
			t.Fatalf("second Apply() unexpected error: %v", err)
		}
		if second := mustRender(t, doc); second != first {
			t.Errorf("second render differs:\n%q\n%q", first, second)
		}
	})

	t.Run("custom container id", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<div id="breadcrumb">keep</div><div id="crumbs"></div>`)
		b := &BreadcrumbBuilder{Title: "T", ContainerID: "crumbs"}
		if _, _, err := b.Apply(context.Background(), doc, "/p.html"); err != nil {
			t.Fatalf("Apply() unexpected error: %v", err)
		}
		want := `<div id="breadcrumb">keep</div><div id="crumbs"><a href="/" class="bc-crumb">T</a><span class="bc-seperator">/</span><span class="bc-current">p</span></div>`
		if got := mustRender(t, doc); got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})
}

func TestBreadcrumbBuilder_Apply_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  *fakeDocument
	}{
		{
			name: "lookup failure",
			doc:  &fakeDocument{findErr: errors.New("cdp closed")},
		},
		{
			name: "write failure",
			doc: &fakeDocument{byID: map[string]*fakeElement{
				DefaultContainerID: {setErr: errors.New("detached node")},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := NewBreadcrumbBuilder().Apply(context.Background(), tt.doc, "/a.html")
			if !errors.Is(err, ErrDocumentAccess) {
				t.Errorf("Apply() error = %v, want ErrDocumentAccess", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustParse(t *testing.T, content string) *StaticDocument {
	t.Helper()
	doc, err := ParseDocument(content)
	if err != nil {
		t.Fatalf("ParseDocument() unexpected error: %v", err)
	}
	return doc
}

func mustRender(t *testing.T, doc *StaticDocument) string {
	t.Helper()
	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	return out
}

// fakeDocument is an in-memory Document with injectable failures.
type fakeDocument struct {
	byID    map[string]*fakeElement
	byTag   map[string][]*fakeElement
	findErr error
}

func (d *fakeDocument) FindByID(_ context.Context, id string) (Element, bool, error) {
	if d.findErr != nil {
		return nil, false, d.findErr
	}
	el, ok := d.byID[id]
	if !ok {
		return nil, false, nil
	}
	return el, true, nil
}

func (d *fakeDocument) FindAllByTag(_ context.Context, tag string) ([]Element, error) {
	if d.findErr != nil {
		return nil, d.findErr
	}
	var out []Element
	for _, el := range d.byTag[tag] {
		out = append(out, el)
	}
	return out, nil
}

// fakeElement records writes.
type fakeElement struct {
	content string
	writes  int
	getErr  error
	setErr  error
}

func (e *fakeElement) InnerHTML() (string, error) {
	if e.getErr != nil {
		return "", e.getErr
	}
	return e.content, nil
}

func (e *fakeElement) SetInnerHTML(content string) error {
	if e.setErr != nil {
		return e.setErr
	}
	e.content = content
	e.writes++
	return nil
}
