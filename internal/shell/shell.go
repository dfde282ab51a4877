// Package shell is the interactive construction shell. Each line is one
// command against the in-memory document; construction commands run the
// intersection pass and report any synthesized points.
package shell

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"planar/internal/core"
	"planar/internal/expr"
	"planar/internal/geom"
	"planar/internal/snapshot"
	"planar/internal/solver"
)

// Shell drives one document through a line-oriented command loop.
type Shell struct {
	st    *core.State
	store *snapshot.Store
	opts  solver.Options
	out   io.Writer
}

// New creates a shell over an empty document. The store may be nil, in
// which case save/load/scenes are unavailable.
func New(store *snapshot.Store, opts solver.Options, out io.Writer) *Shell {
	return &Shell{
		st:    core.NewState(),
		store: store,
		opts:  opts,
		out:   out,
	}
}

// State exposes the current document.
func (s *Shell) State() *core.State {
	return s.st
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("point"),
	readline.PcItem("float"),
	readline.PcItem("pin"),
	readline.PcItem("segment"),
	readline.PcItem("segabs"),
	readline.PcItem("segrel"),
	readline.PcItem("circle"),
	readline.PcItem("circum"),
	readline.PcItem("circle3"),
	readline.PcItem("arc"),
	readline.PcItem("var"),
	readline.PcItem("constrain",
		readline.PcItem("dist"),
		readline.PcItem("angle"),
		readline.PcItem("on-seg"),
		readline.PcItem("on-circle"),
		readline.PcItem("on-arc"),
		readline.PcItem("eq"),
	),
	readline.PcItem("eval"),
	readline.PcItem("solve"),
	readline.PcItem("list"),
	readline.PcItem("del"),
	readline.PcItem("tool"),
	readline.PcItem("measure"),
	readline.PcItem("save"),
	readline.PcItem("load"),
	readline.PcItem("scenes"),
	readline.PcItem("quit"),
)

// Run reads commands until quit or EOF.
func (s *Shell) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "planar> ",
		HistoryFile:       historyFile,
		AutoComplete:      completer,
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if err == io.EOF {
			return nil
		}
		if s.Execute(strings.TrimSpace(line)) {
			return nil
		}
	}
}

// Execute runs a single command line. It reports whether the shell should
// exit.
func (s *Shell) Execute(line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "point":
		s.cmdPoint(args)
	case "float":
		s.cmdSetFloating(args, true)
	case "pin":
		s.cmdSetFloating(args, false)
	case "segment":
		s.cmdSegment(args)
	case "segabs":
		s.cmdSegAbs(args)
	case "segrel":
		s.cmdSegRel(args)
	case "circle":
		s.cmdCircle(args)
	case "circum":
		s.cmdCircum(args)
	case "circle3":
		s.cmdCircle3(args)
	case "arc":
		s.cmdArc(args)
	case "var":
		s.cmdVar(args)
	case "constrain":
		s.cmdConstrain(args)
	case "eval":
		s.cmdEval(args, line)
	case "solve":
		s.cmdSolve()
	case "list":
		s.cmdList()
	case "del":
		s.cmdDel(args)
	case "tool":
		s.cmdTool(args)
	case "measure":
		s.cmdMeasure(args)
	case "save":
		s.cmdSave(args)
	case "load":
		s.cmdLoad(args)
	case "scenes":
		s.cmdScenes()
	default:
		s.printf("unknown command %q", cmd)
	}
	return false
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

// afterConstruction runs the intersection pass and reports what it added.
func (s *Shell) afterConstruction() {
	for _, p := range s.st.FindAllIntersections() {
		s.printf("intersection %s (id %d) at (%.4g, %.4g)", p.Label, p.ID, p.X, p.Y)
	}
}

func (s *Shell) cmdPoint(args []string) {
	if len(args) < 2 || len(args) > 3 {
		s.printf("usage: point <x> <y> [float]")
		return
	}
	x, err1 := strconv.ParseFloat(args[0], 64)
	y, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		s.printf("invalid coordinates")
		return
	}
	floating := len(args) == 3 && args[2] == "float"
	p := s.st.AddPoint(x, y, floating)
	s.printf("point %s (id %d)", p.Label, p.ID)
	s.afterConstruction()
}

func (s *Shell) cmdSetFloating(args []string, floating bool) {
	if len(args) != 1 {
		s.printf("usage: float|pin <id>")
		return
	}
	id, ok := s.parseID(args[0])
	if !ok {
		return
	}
	p := s.st.Points[id]
	if p == nil {
		s.printf("no point with id %d", id)
		return
	}
	p.Floating = floating
}

func (s *Shell) cmdSegment(args []string) {
	if len(args) != 2 {
		s.printf("usage: segment <p1> <p2>")
		return
	}
	p1, ok1 := s.parseID(args[0])
	p2, ok2 := s.parseID(args[1])
	if !ok1 || !ok2 {
		return
	}
	seg := s.st.AddSegmentTwoPoints(p1, p2)
	if seg == nil {
		s.printf("segment rejected: endpoints must be two distinct existing points")
		return
	}
	s.printf("segment id %d", seg.ID)
	s.afterConstruction()
}

func (s *Shell) cmdSegAbs(args []string) {
	if len(args) != 3 {
		s.printf("usage: segabs <p1> <length> <degrees>")
		return
	}
	p1, ok := s.parseID(args[0])
	if !ok {
		return
	}
	length, err1 := strconv.ParseFloat(args[1], 64)
	deg, err2 := strconv.ParseFloat(args[2], 64)
	if err1 != nil || err2 != nil {
		s.printf("invalid length or angle")
		return
	}
	seg := s.st.AddSegmentAbsAngle(p1, length, deg)
	if seg == nil {
		s.printf("no point with id %d", p1)
		return
	}
	far := s.st.Points[seg.P2]
	s.printf("segment id %d, endpoint %s (id %d)", seg.ID, far.Label, far.ID)
	s.afterConstruction()
}

func (s *Shell) cmdSegRel(args []string) {
	if len(args) != 4 {
		s.printf("usage: segrel <p1> <ref-segment> <length> <degrees>")
		return
	}
	p1, ok1 := s.parseID(args[0])
	ref, ok2 := s.parseID(args[1])
	if !ok1 || !ok2 {
		return
	}
	length, err1 := strconv.ParseFloat(args[2], 64)
	deg, err2 := strconv.ParseFloat(args[3], 64)
	if err1 != nil || err2 != nil {
		s.printf("invalid length or angle")
		return
	}
	seg := s.st.AddSegmentRelAngle(p1, ref, length, deg)
	if seg == nil {
		s.printf("segment rejected: check the point and reference segment ids")
		return
	}
	far := s.st.Points[seg.P2]
	s.printf("segment id %d, endpoint %s (id %d)", seg.ID, far.Label, far.ID)
	s.afterConstruction()
}

func (s *Shell) cmdCircle(args []string) {
	if len(args) != 2 {
		s.printf("usage: circle <center> <radius>")
		return
	}
	center, ok := s.parseID(args[0])
	if !ok {
		return
	}
	r, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		s.printf("invalid radius")
		return
	}
	c := s.st.AddCircleRadius(center, r)
	if c == nil {
		s.printf("no point with id %d", center)
		return
	}
	s.printf("circle id %d", c.ID)
	s.afterConstruction()
}

func (s *Shell) cmdCircum(args []string) {
	if len(args) != 2 {
		s.printf("usage: circum <center> <through>")
		return
	}
	center, ok1 := s.parseID(args[0])
	through, ok2 := s.parseID(args[1])
	if !ok1 || !ok2 {
		return
	}
	c := s.st.AddCircleCircumference(center, through)
	if c == nil {
		s.printf("circle rejected: both points must exist")
		return
	}
	s.printf("circle id %d, radius %.4g", c.ID, c.Radius)
	s.afterConstruction()
}

func (s *Shell) cmdCircle3(args []string) {
	if len(args) != 3 {
		s.printf("usage: circle3 <a> <b> <c>")
		return
	}
	a, ok1 := s.parseID(args[0])
	b, ok2 := s.parseID(args[1])
	c, ok3 := s.parseID(args[2])
	if !ok1 || !ok2 || !ok3 {
		return
	}
	circle := s.st.AddCircleThreePoints(a, b, c)
	if circle == nil {
		s.printf("circle rejected: points missing or collinear")
		return
	}
	center := s.st.Points[circle.Center]
	s.printf("circle id %d, center %s (id %d), radius %.4g",
		circle.ID, center.Label, center.ID, circle.Radius)
	s.afterConstruction()
}

func (s *Shell) cmdArc(args []string) {
	if len(args) != 3 {
		s.printf("usage: arc <circle> <start> <end>")
		return
	}
	circle, ok1 := s.parseID(args[0])
	start, ok2 := s.parseID(args[1])
	end, ok3 := s.parseID(args[2])
	if !ok1 || !ok2 || !ok3 {
		return
	}
	a := s.st.AddArc(circle, start, end)
	if a == nil {
		s.printf("arc rejected: check the circle and point ids")
		return
	}
	s.printf("arc id %d", a.ID)
	s.afterConstruction()
}

func (s *Shell) cmdVar(args []string) {
	if len(args) < 2 || len(args) > 3 {
		s.printf("usage: var <name> <value|auto> [auto]")
		return
	}
	name := args[0]
	if args[1] == "auto" {
		if s.st.AddVariableAuto(name) == nil {
			s.printf("variable %q already exists", name)
			return
		}
		s.printf("variable %s (auto)", name)
		return
	}
	val, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		s.printf("invalid value %q", args[1])
		return
	}
	determined := len(args) == 3 && args[2] == "auto"
	if s.st.AddVariable(name, val, determined) == nil {
		s.printf("variable %q already exists", name)
		return
	}
	s.printf("variable %s = %.6g", name, val)
}

func (s *Shell) cmdConstrain(args []string) {
	if len(args) < 2 {
		s.printf("usage: constrain dist|angle|on-seg|on-circle|on-arc|eq ...")
		return
	}
	var c *core.Constraint
	switch args[0] {
	case "dist", "angle":
		if len(args) < 4 {
			s.printf("usage: constrain %s <p1> <p2> <expr>", args[0])
			return
		}
		p1, ok1 := s.parseID(args[1])
		p2, ok2 := s.parseID(args[2])
		if !ok1 || !ok2 {
			return
		}
		e := strings.Join(args[3:], " ")
		if !expr.Validate(e) {
			s.printf("invalid expression %q", e)
			return
		}
		kind := core.ConstraintDistance
		if args[0] == "angle" {
			kind = core.ConstraintAngle
		}
		c = &core.Constraint{Type: kind, Points: []core.ID{p1, p2}, Expr: e}
	case "on-seg", "on-circle", "on-arc":
		if len(args) != 3 {
			s.printf("usage: constrain %s <point> <target>", args[0])
			return
		}
		p, ok1 := s.parseID(args[1])
		target, ok2 := s.parseID(args[2])
		if !ok1 || !ok2 {
			return
		}
		kind := core.ConstraintPointOnSegment
		switch args[0] {
		case "on-circle":
			kind = core.ConstraintPointOnCircle
		case "on-arc":
			kind = core.ConstraintPointOnArc
		}
		c = &core.Constraint{Type: kind, Points: []core.ID{p}, Target: target}
	case "eq":
		if len(args) < 2 {
			s.printf("usage: constrain eq <expr>")
			return
		}
		e := strings.Join(args[1:], " ")
		if !expr.Validate(e) {
			s.printf("invalid expression %q", e)
			return
		}
		c = &core.Constraint{Type: core.ConstraintEquation, Expr: e}
	default:
		s.printf("unknown constraint kind %q", args[0])
		return
	}

	res, ok := solver.TryAddConstraint(s.st, c)
	if !ok {
		s.printf("constraint rejected: no solution found on trial solve")
		return
	}
	s.printf("constraint id %d, solved in %d iterations (error %.3g)",
		c.ID, res.Iterations, res.FinalError)
}

func (s *Shell) cmdEval(args []string, line string) {
	if len(args) == 0 {
		s.printf("usage: eval <expr>")
		return
	}
	e := strings.TrimSpace(strings.TrimPrefix(line, "eval"))
	val, ok := expr.Evaluate(e, s.st.VarValues())
	if !ok {
		s.printf("unresolved")
		return
	}
	s.printf("%.6g", val)
}

func (s *Shell) cmdSolve() {
	res := solver.SolveWith(s.st, s.opts)
	if !res.Success {
		s.printf("solve failed after %d iterations (error %.3g)",
			res.Iterations, res.FinalError)
		return
	}
	s.printf("solved in %d iterations (error %.3g)", res.Iterations, res.FinalError)
}

func (s *Shell) cmdList() {
	for _, id := range s.st.PointIDs() {
		p := s.st.Points[id]
		state := "pinned"
		if p.Floating {
			state = "float"
		}
		s.printf("point %d %s (%.4g, %.4g) %s", p.ID, p.Label, p.X, p.Y, state)
	}
	for _, id := range s.st.SegmentIDs() {
		seg := s.st.Segments[id]
		s.printf("segment %d %s %d-%d", seg.ID, seg.Type, seg.P1, seg.P2)
	}
	for _, id := range s.st.CircleIDs() {
		c := s.st.Circles[id]
		s.printf("circle %d %s center %d radius %.4g", c.ID, c.Type, c.Center, c.Radius)
	}
	for _, id := range s.st.ArcIDs() {
		a := s.st.Arcs[id]
		s.printf("arc %d circle %d %d-%d", a.ID, a.Circle, a.Start, a.End)
	}
	for _, name := range s.st.VariableNames() {
		v := s.st.Variables[name]
		if v.HasValue {
			s.printf("var %s = %.6g", name, v.Value)
		} else {
			s.printf("var %s = <unresolved>", name)
		}
	}
	ids := make([]core.ID, 0, len(s.st.Constraints))
	for _, c := range s.st.Constraints {
		ids = append(ids, c.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		c := s.st.Constraint(id)
		s.printf("constraint %d %s points=%v target=%d %s",
			c.ID, c.Type, c.Points, c.Target, c.Expr)
	}
}

func (s *Shell) cmdDel(args []string) {
	if len(args) != 1 {
		s.printf("usage: del <id>")
		return
	}
	id, ok := s.parseID(args[0])
	if !ok {
		return
	}
	s.st.DeleteEntity(id)
	s.printf("deleted %d (and dependents)", id)
}

func (s *Shell) cmdTool(args []string) {
	if len(args) != 1 {
		s.printf("usage: tool <name>")
		return
	}
	s.st.SetActiveTool(core.Tool(strings.ToUpper(args[0])))
}

func (s *Shell) cmdMeasure(args []string) {
	switch len(args) {
	case 0:
		for _, m := range s.st.MeasureHistory {
			s.printf("%s %v = %.6g", m.Kind, m.IDs, m.Value)
		}
	case 2:
		p1, ok1 := s.parseID(args[0])
		p2, ok2 := s.parseID(args[1])
		if !ok1 || !ok2 {
			return
		}
		a := s.st.Points[p1]
		b := s.st.Points[p2]
		if a == nil || b == nil {
			s.printf("both ids must be points")
			return
		}
		d := geom.Dist(a.X, a.Y, b.X, b.Y)
		s.st.AddToMeasureHistory(core.Measurement{
			Kind:  "DISTANCE",
			Value: d,
			IDs:   []core.ID{p1, p2},
		})
		s.printf("distance %s-%s = %.6g", a.Label, b.Label, d)
	default:
		s.printf("usage: measure [<p1> <p2>]")
	}
}

func (s *Shell) cmdSave(args []string) {
	if s.store == nil {
		s.printf("no scene store configured")
		return
	}
	if len(args) != 1 {
		s.printf("usage: save <name>")
		return
	}
	id, err := s.store.Save(args[0], s.st)
	if err != nil {
		s.printf("save failed: %v", err)
		return
	}
	s.printf("saved %s as %s", args[0], id)
}

func (s *Shell) cmdLoad(args []string) {
	if s.store == nil {
		s.printf("no scene store configured")
		return
	}
	if len(args) != 1 {
		s.printf("usage: load <id|name>")
		return
	}
	st, err := s.store.Load(args[0])
	if err != nil {
		st, err = s.store.LoadLatestByName(args[0])
	}
	if err != nil {
		s.printf("load failed: %v", err)
		return
	}
	s.st = st
	s.printf("loaded %s: %d points, %d constraints",
		args[0], len(st.Points), len(st.Constraints))
}

func (s *Shell) cmdScenes() {
	if s.store == nil {
		s.printf("no scene store configured")
		return
	}
	metas, err := s.store.List()
	if err != nil {
		s.printf("listing scenes failed: %v", err)
		return
	}
	for _, m := range metas {
		s.printf("%s  %s  %s  %s",
			m.ID, m.Name, m.Digest[:12], m.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func (s *Shell) parseID(arg string) (core.ID, bool) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n <= 0 {
		s.printf("invalid id %q", arg)
		return 0, false
	}
	return core.ID(n), true
}
