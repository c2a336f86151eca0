package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"testing"

	"pgregory.net/rapid"
)

func header(sha, date string) []byte {
	return append([]byte{recordSeparator}, []byte(sha+" "+date)...)
}

func TestLogScanner_MarkersAndPaths(t *testing.T) {
	// Body bytes as produced by `git log -z --name-only --pretty=format:%x1e%H %cI`.
	var body []byte

	body = append(body, header("c3", "2024-03-01T03:00:00+02:00")...)
	body = append(body, '\n')
	body = append(body, []byte("c.txt")...)
	body = append(body, 0)
	body = append(body, 0) // commit separator

	// A merge without a diff: header only.
	body = append(body, header("m1", "2024-03-01T02:30:00+02:00")...)
	body = append(body, 0)

	body = append(body, header("c2", "2024-03-01T02:00:00+02:00")...)
	body = append(body, '\n', '\n')
	body = append(body, []byte("a.txt")...)
	body = append(body, 0)
	body = append(body, []byte("dir with space/b\tc.txt")...)
	body = append(body, 0)

	sc := newLogScanner(bytes.NewReader(body))

	type rec struct {
		kind logRecordKind
		val  string
	}
	want := []rec{
		{recordMarker, "c3"},
		{recordPath, "c.txt"},
		{recordMarker, "m1"},
		{recordMarker, "c2"},
		{recordPath, "a.txt"},
		{recordPath, "dir with space/b\tc.txt"},
	}

	for i, w := range want {
		got, err := sc.next()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if got.kind != w.kind {
			t.Fatalf("record %d kind = %v, expected %v", i, got.kind, w.kind)
		}
		val := got.path
		if got.kind == recordMarker {
			val = got.commit.SHA
		}
		if val != w.val {
			t.Fatalf("record %d = %q, expected %q", i, val, w.val)
		}
	}
	if _, err := sc.next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after the last record, got %v", err)
	}
}

func TestLogScanner_PathOnHeaderLine(t *testing.T) {
	// Some git versions put the first name directly after the header newline
	// inside the same NUL-terminated token.
	body := append(header("abc", "2024-01-02T03:04:05Z"), []byte("\nfile.go\x00other.go\x00")...)

	sc := newLogScanner(bytes.NewReader(body))
	marker, err := sc.next()
	if err != nil || marker.kind != recordMarker {
		t.Fatalf("first record = %+v, %v", marker, err)
	}
	if got := marker.commit.When.Format("2006-01-02T15:04:05Z07:00"); got != "2024-01-02T03:04:05Z" {
		t.Errorf("marker time = %s", got)
	}
	for _, want := range []string{"file.go", "other.go"} {
		rec, err := sc.next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if rec.kind != recordPath || rec.path != want {
			t.Errorf("record = %+v, expected path %q", rec, want)
		}
	}
}

func TestLogScanner_RecordSeparatorInsidePath(t *testing.T) {
	var body []byte
	body = append(body, header("c2", "2024-03-01T02:00:00+02:00")...)
	body = append(body, []byte("\nre\x1eport.txt\x00plain.txt\x00\x00")...)
	body = append(body, header("c1", "2024-03-01T01:00:00+02:00")...)
	body = append(body, []byte("\ndir/a\x1eb/c.txt\x00")...)

	sc := newLogScanner(bytes.NewReader(body))
	want := []logRecord{
		{kind: recordMarker, commit: CommitInfo{SHA: "c2"}},
		{kind: recordPath, path: "re\x1eport.txt"},
		{kind: recordPath, path: "plain.txt"},
		{kind: recordMarker, commit: CommitInfo{SHA: "c1"}},
		{kind: recordPath, path: "dir/a\x1eb/c.txt"},
	}
	for i, w := range want {
		got, err := sc.next()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if got.kind != w.kind || got.path != w.path || got.commit.SHA != w.commit.SHA {
			t.Fatalf("record %d = %+v, expected %+v", i, got, w)
		}
	}
	if _, err := sc.next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestLogScanner_BadHeader(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "missing date", body: append([]byte{recordSeparator}, []byte("deadbeef\x00")...)},
		{name: "invalid date", body: header("deadbeef", "yesterday")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newLogScanner(bytes.NewReader(tt.body))
			if _, err := sc.next(); err == nil {
				t.Fatal("expected an error for a malformed header")
			}
		})
	}
}

func TestLogStream_GroupsStepsAndFiltersPending(t *testing.T) {
	var body []byte
	body = append(body, header("c3", "2024-03-01T03:00:00+02:00")...)
	body = append(body, []byte("\nc.txt\x00untracked.txt\x00\x00")...)
	body = append(body, header("c2", "2024-03-01T02:00:00+02:00")...)
	body = append(body, []byte("\na.txt\x00\x00")...)
	body = append(body, header("c1", "2024-03-01T01:00:00+02:00")...)
	body = append(body, []byte("\na.txt\x00b.txt\x00")...)

	src := newLogStreamFromReader(bytes.NewReader(body))
	got, steps := drain(t, src, []string{"a.txt", "b.txt", "c.txt"})

	if steps != 3 {
		t.Errorf("steps = %d, expected 3", steps)
	}
	want := map[string]string{
		"a.txt": "2024-03-01T02:00:00+02:00",
		"b.txt": "2024-03-01T01:00:00+02:00",
		"c.txt": "2024-03-01T03:00:00+02:00",
	}
	for path, ts := range want {
		if got[path] != ts {
			t.Errorf("%s = %q, expected %q", path, got[path], ts)
		}
	}
	if _, ok := got["untracked.txt"]; ok {
		t.Error("untracked.txt must not be resolved")
	}
}

func TestLogStream_PathBeforeHeader(t *testing.T) {
	src := newLogStreamFromReader(bytes.NewReader([]byte("orphan.txt\x00")))
	defer src.Close()

	_, err := src.Next(context.Background(), newPathSet("orphan.txt"))
	var be *BackendAccessError
	if !errors.As(err, &be) {
		t.Fatalf("Next error = %v, expected *BackendAccessError", err)
	}
}

func TestLogScanner_RoundTripProperty(t *testing.T) {
	genPath := rapid.StringMatching(`[a-z]{1,6}(/[a-z0-9 ._\x1e-]{1,8}){0,3}`)

	rapid.Check(t, func(t *rapid.T) {
		commits := rapid.IntRange(1, 8).Draw(t, "commits")

		var body []byte
		type commit struct {
			sha   string
			paths []string
		}
		var want []commit
		for i := 0; i < commits; i++ {
			c := commit{sha: fmt.Sprintf("%040d", i)}
			c.paths = rapid.SliceOfNDistinct(genPath, 0, 5, func(s string) string { return s }).Draw(t, "paths")

			if i > 0 {
				body = append(body, 0)
			}
			body = append(body, header(c.sha, "2024-03-01T01:00:00Z")...)
			body = append(body, '\n')
			for _, p := range c.paths {
				body = append(body, []byte(p)...)
				body = append(body, 0)
			}
			want = append(want, c)
		}

		sc := newLogScanner(bytes.NewReader(body))
		for _, c := range want {
			rec, err := sc.next()
			if err != nil {
				t.Fatalf("next: %v", err)
			}
			if rec.kind != recordMarker || rec.commit.SHA != c.sha {
				t.Fatalf("record = %+v, expected marker %s", rec, c.sha)
			}
			for _, p := range c.paths {
				rec, err := sc.next()
				if err != nil {
					t.Fatalf("next: %v", err)
				}
				if rec.kind != recordPath || rec.path != p {
					t.Fatalf("record = %+v, expected path %q", rec, p)
				}
			}
		}
		if _, err := sc.next(); !errors.Is(err, io.EOF) {
			t.Fatalf("expected io.EOF, got %v", err)
		}
	})
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
}

// linearRepo covers additions, modifications, a deletion and a re-add.
func linearRepo(t *testing.T) *testRepo {
	r := newTestRepo(t)
	r.write("a.txt", "a1\n")
	r.write("b.txt", "b1\n")
	r.write("lib/x.go", "package lib\n")
	r.commit("C1", at(1))
	r.write("a.txt", "a2\n")
	r.write("lib/y.go", "package lib\n")
	r.commit("C2", at(2))
	r.remove("b.txt")
	r.write("docs/readme.md", "docs\n")
	r.commit("C3", at(3))
	r.write("b.txt", "b returns\n")
	r.write("lib/x.go", "package lib // v2\n")
	r.commit("C4", at(4))
	r.write("a.txt", "a3\n")
	r.commit("C5", at(5))
	return r
}

func TestStrategies_ProduceIdenticalResults(t *testing.T) {
	requireGit(t)

	tests := []struct {
		name  string
		build func(t *testing.T) *testRepo
		check map[string]string
	}{
		{
			name:  "linear",
			build: linearRepo,
			check: map[string]string{"b.txt": "2024-03-01T04:00:00+02:00"},
		},
		{
			name:  "merge",
			build: mergeRepo,
			check: map[string]string{
				"a.txt": "2024-03-01T03:00:00+02:00",
				"b.txt": "2024-03-01T04:00:00+02:00",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.build(t)
			repo := r.open()
			head, err := repo.HeadSnapshot("")
			if err != nil {
				t.Fatalf("HeadSnapshot: %v", err)
			}

			for _, threshold := range []int{0, DefaultPathspecThreshold} {
				tree, _ := drain(t, repo.NewTreeWalker(head, WalkOptions{PathspecThreshold: threshold}), head.Paths)
				logged, _ := drain(t, NewLogStream(WalkOptions{RepoPath: r.dir}), head.Paths)

				if len(tree) != len(head.Paths) {
					t.Fatalf("threshold=%d: tree strategy resolved %d of %d paths: %v", threshold, len(tree), len(head.Paths), tree)
				}
				if len(logged) != len(tree) {
					t.Fatalf("threshold=%d: log strategy = %v, tree strategy = %v", threshold, logged, tree)
				}
				for path, ts := range tree {
					if logged[path] != ts {
						t.Errorf("threshold=%d: %s: log=%q tree=%q", threshold, path, logged[path], ts)
					}
				}
				for path, want := range tt.check {
					if tree[path] != want {
						t.Errorf("threshold=%d: %s = %q, expected %q", threshold, path, tree[path], want)
					}
				}
			}
		})
	}
}

func TestLogStream_CloseStopsEarly(t *testing.T) {
	requireGit(t)

	r := newTestRepo(t)
	for i := 1; i <= 20; i++ {
		r.write(fmt.Sprintf("f%02d.txt", i), "x\n")
		r.commit(fmt.Sprintf("commit %d", i), at(i%24))
	}

	src := NewLogStream(WalkOptions{RepoPath: r.dir})
	step, err := src.Next(context.Background(), newPathSet("f20.txt"))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(step.Paths) != 1 || step.Paths[0] != "f20.txt" {
		t.Errorf("first step paths = %v, expected [f20.txt]", step.Paths)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := src.Next(context.Background(), newPathSet("f01.txt")); !errors.Is(err, io.EOF) {
		t.Fatalf("Next after Close = %v, expected io.EOF", err)
	}
}

func TestLogStream_BadRepository(t *testing.T) {
	requireGit(t)

	src := NewLogStream(WalkOptions{RepoPath: t.TempDir()})
	defer src.Close()

	_, err := src.Next(context.Background(), newPathSet("a"))
	var be *BackendAccessError
	if !errors.As(err, &be) {
		t.Fatalf("Next error = %v, expected *BackendAccessError", err)
	}
}
