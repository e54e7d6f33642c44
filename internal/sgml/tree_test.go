package sgml

import (
	"reflect"
	"testing"

	"github.com/dgallion1/ncparse/internal/grammar"
)

// shape reduces a tree to tags, values and raw content for comparison.
type shape struct {
	Tag      string
	Value    string
	Raw      string
	Children []shape
}

func shapeOf(n *Node) shape {
	s := shape{Tag: n.Tag, Value: n.Value, Raw: string(n.Raw)}
	for _, c := range n.Children {
		s.Children = append(s.Children, shapeOf(c))
	}
	return s
}

func mustBuild(t *testing.T, data string, g *grammar.Table) *Tree {
	t.Helper()
	tree, err := Build([]byte(data), g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tree
}

func TestBuild_AmbiguousClose(t *testing.T) {
	g := grammar.New(map[string]grammar.Kind{"A": grammar.Block, "B": grammar.Block})
	tree := mustBuild(t, "<A>\n<B>\ntext\n</A>\n", g)

	if len(tree.Root.Children) != 1 {
		t.Fatalf("expected one top-level node, got %d", len(tree.Root.Children))
	}
	a := tree.Root.Children[0]
	if a.Tag != "A" || len(a.Children) != 1 {
		t.Fatalf("expected A with one child, got %s with %d", a.Tag, len(a.Children))
	}
	b := a.Children[0]
	if b.Tag != "B" || string(b.Raw) != "text\n" {
		t.Errorf("expected B containing text, got %s %q", b.Tag, b.Raw)
	}
	if !a.Closed || b.Closed {
		t.Errorf("expected A closed explicitly and B implicitly, got %v %v", a.Closed, b.Closed)
	}
	if len(tree.Anomalies) != 1 || tree.Anomalies[0].Kind != AnomalyImplicitClose || tree.Anomalies[0].Tag != "B" {
		t.Errorf("expected one implicit-close anomaly for B, got %+v", tree.Anomalies)
	}
}

func TestBuild_InnermostMatchWins(t *testing.T) {
	g := grammar.New(map[string]grammar.Kind{"A": grammar.Block})
	tree := mustBuild(t, "<A>\n<A>\n<X>1\n</A>\n<Y>2\n</A>\n", g)
	outer := tree.Root.Children[0]
	if len(outer.Children) != 2 {
		t.Fatalf("expected inner A and Y under outer A, got %d children", len(outer.Children))
	}
	if outer.Children[0].Child("X") == nil || outer.Children[1].Tag != "Y" {
		t.Errorf("unexpected shape %+v", shapeOf(outer))
	}
}

func TestBuild_ImplicitClosureAtEOF(t *testing.T) {
	closed := "<SUBMISSION>\n<ACCESSION-NUMBER>0000950123-24-000001\n<FILER>\n<COMPANY-DATA>\n<CONFORMED-NAME>ACME CORP\n</COMPANY-DATA>\n</FILER>\n</SUBMISSION>\n"
	open := "<SUBMISSION>\n<ACCESSION-NUMBER>0000950123-24-000001\n<FILER>\n<COMPANY-DATA>\n<CONFORMED-NAME>ACME CORP\n"

	a := mustBuild(t, closed, nil)
	b := mustBuild(t, open, nil)
	if !reflect.DeepEqual(shapeOf(a.Root), shapeOf(b.Root)) {
		t.Errorf("expected identical trees:\n%+v\n%+v", shapeOf(a.Root), shapeOf(b.Root))
	}
	if len(b.Anomalies) != 0 {
		t.Errorf("expected no anomalies for closure at end of input, got %+v", b.Anomalies)
	}
}

func TestBuild_SpuriousClose(t *testing.T) {
	tree := mustBuild(t, "<SUBMISSION>\n<TYPE>8-K\n</FILER>\n<PERIOD>20240101\n</SUBMISSION>\n", nil)
	sub := tree.Root.Child("SUBMISSION")
	if sub == nil || len(sub.Children) != 2 {
		t.Fatalf("expected submission with two values, got %+v", shapeOf(tree.Root))
	}
	if len(tree.Anomalies) != 1 || tree.Anomalies[0].Kind != AnomalySpuriousClose {
		t.Fatalf("expected one spurious-close anomaly, got %+v", tree.Anomalies)
	}
	if tree.Anomalies[0].Offset != len("<SUBMISSION>\n<TYPE>8-K\n") {
		t.Errorf("unexpected anomaly offset %d", tree.Anomalies[0].Offset)
	}
}

func TestBuild_ValueCloseAccepted(t *testing.T) {
	tree := mustBuild(t, "<SUBMISSION>\n<TYPE>8-K\n</TYPE>\n<FLAWED>\n</SUBMISSION>\n", nil)
	if len(tree.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %+v", tree.Anomalies)
	}
	sub := tree.Root.Child("SUBMISSION")
	flag := sub.Child("FLAWED")
	if flag == nil || !flag.HasValue || flag.Value != "" {
		t.Errorf("expected empty flag leaf, got %+v", flag)
	}
}

func TestBuild_ValueContinuation(t *testing.T) {
	tree := mustBuild(t, "<COMPANY-DATA>\n<CONFORMED-NAME>FIRST NATIONAL BANK\nOF SPRINGFIELD\n<CIK>0000012345\n</COMPANY-DATA>\n", nil)
	cd := tree.Root.Child("COMPANY-DATA")
	if got := cd.Child("CONFORMED-NAME").Value; got != "FIRST NATIONAL BANK\nOF SPRINGFIELD" {
		t.Errorf("unexpected continued value %q", got)
	}
	if len(cd.Raw) != 0 {
		t.Errorf("expected no stray raw content, got %q", cd.Raw)
	}
}

func TestBuild_BodyBlockKeepsLooseLines(t *testing.T) {
	tree := mustBuild(t, "<DOCUMENT>\n<TYPE>10-K\n<DESCRIPTION>ANNUAL REPORT\nUNITED STATES\nWASHINGTON, D.C.\n</DOCUMENT>\n", nil)
	doc := tree.Root.Child("DOCUMENT")
	if got := doc.Child("DESCRIPTION").Value; got != "ANNUAL REPORT" {
		t.Errorf("expected description left intact, got %q", got)
	}
	if string(doc.Raw) != "UNITED STATES\nWASHINGTON, D.C.\n" {
		t.Errorf("expected loose lines kept as document content, got %q", doc.Raw)
	}
	if len(tree.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %+v", tree.Anomalies)
	}
}

func TestBuild_StrayContent(t *testing.T) {
	tree := mustBuild(t, "garbage before\n<SUBMISSION>\n<DOCUMENT>\n<TYPE>EX-1\n</TYPE>\nloose line\n</DOCUMENT>\n", nil)
	if len(tree.Anomalies) != 1 || tree.Anomalies[0].Kind != AnomalyStrayContent {
		t.Fatalf("expected one stray-content anomaly, got %+v", tree.Anomalies)
	}
	doc := tree.Root.Child("SUBMISSION").Child("DOCUMENT")
	if string(doc.Raw) != "loose line\n" {
		t.Errorf("expected loose line attached to document, got %q", doc.Raw)
	}
}

func TestBuild_OpaqueText(t *testing.T) {
	body := "<html>\n<body><p>hello</p>\n</body>\n</html>\n"
	tree := mustBuild(t, "<DOCUMENT>\n<TYPE>10-K\n<TEXT>\n"+body+"</TEXT>\n<X>after\n</DOCUMENT>\n", nil)
	doc := tree.Root.Child("DOCUMENT")
	text := doc.Child("TEXT")
	if text == nil {
		t.Fatal("expected TEXT node")
	}
	if string(text.Raw) != body {
		t.Errorf("expected body preserved byte for byte, got %q", text.Raw)
	}
	if doc.Child("X") == nil || doc.Child("HTML") != nil {
		t.Errorf("expected tokenizing to resume after </TEXT>, got %+v", shapeOf(doc))
	}
}

func TestBuild_InlineMarkup(t *testing.T) {
	tree := mustBuild(t, "<XBRL>a<tag>x</tag>b</XBRL>\n", nil)
	x := tree.Root.Child("XBRL")
	if x == nil {
		t.Fatal("expected XBRL node")
	}
	if string(x.Raw) != "a<tag>x</tag>b" {
		t.Errorf("expected interior a<tag>x</tag>b, got %q", x.Raw)
	}
	if !x.Closed {
		t.Error("expected XBRL closed")
	}
}

func TestBuild_UnterminatedOpaque(t *testing.T) {
	tree := mustBuild(t, "<DOCUMENT>\n<TEXT>\nno end\n", nil)
	text := tree.Root.Child("DOCUMENT").Child("TEXT")
	if string(text.Raw) != "no end\n" {
		t.Errorf("expected span to end of input, got %q", text.Raw)
	}
	if len(tree.Anomalies) != 1 || tree.Anomalies[0].Kind != AnomalyUnterminated {
		t.Errorf("expected unterminated-opaque anomaly, got %+v", tree.Anomalies)
	}
}

func TestBuild_LateClose(t *testing.T) {
	tree := mustBuild(t, "<SUBMISSION>\n<NEW-THING>\n<A>1\n</NEW-THING>\n</SUBMISSION>\n", nil)
	if len(tree.Anomalies) != 1 || tree.Anomalies[0].Kind != AnomalyLateClose {
		t.Errorf("expected late-close anomaly, got %+v", tree.Anomalies)
	}
}

func TestBuild_TokenizeErrorIsFatal(t *testing.T) {
	if _, err := Build([]byte("<SUBMISSION>\n<TYPE 10-K\n"), nil); err == nil {
		t.Fatal("expected tokenize error")
	}
}

func TestNode_Walk(t *testing.T) {
	tree := mustBuild(t, "<SUBMISSION>\n<FILER>\n<COMPANY-DATA>\n<CIK>1\n</COMPANY-DATA>\n</FILER>\n</SUBMISSION>\n", nil)
	var tags []string
	tree.Root.Walk(func(n *Node) bool {
		if n.Tag != "" {
			tags = append(tags, n.Tag)
		}
		return n.Tag != "FILER"
	})
	want := []string{"SUBMISSION", "FILER"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("expected %v, got %v", want, tags)
	}
}

func TestBuild_LowerCaseMarkupClose(t *testing.T) {
	inner := "\n<xbrl xmlns=\"http://www.xbrl.org/2003/instance\">\n</xbrl>\n"
	tree := mustBuild(t, "<DOCUMENT>\n<XBRL>"+inner+"</XBRL>\n</DOCUMENT>\n", nil)
	x := tree.Root.Child("DOCUMENT").Child("XBRL")
	if x == nil || string(x.Raw) != inner[1:] {
		t.Fatalf("expected markup kept up to </XBRL>, got %+v", x)
	}
	if len(tree.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %+v", tree.Anomalies)
	}
}

func TestBuild_OpaqueStopsAtEnclosingClose(t *testing.T) {
	data := "<SUBMISSION>\n" +
		"<DOCUMENT>\n<TYPE>10-K\n<TEXT>\nfirst body\n</text>\n</DOCUMENT>\n" +
		"<DOCUMENT>\n<TYPE>EX-99\n<TEXT>\nsecond body\n</TEXT>\n</DOCUMENT>\n" +
		"</SUBMISSION>\n"
	tree := mustBuild(t, data, nil)
	docs := tree.Root.Child("SUBMISSION").Children
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if got := string(docs[0].Child("TEXT").Raw); got != "first body\n" {
		t.Errorf("expected first body only, got %q", got)
	}
	if got := string(docs[1].Child("TEXT").Raw); got != "second body\n" {
		t.Errorf("expected second body, got %q", got)
	}
	if len(tree.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %+v", tree.Anomalies)
	}
}

func TestBuild_UnclosedOpaqueEndsAtDocument(t *testing.T) {
	data := "<DOCUMENT>\n<TEXT>\nno close\n</DOCUMENT>\n<DOCUMENT>\n<TYPE>EX-1\n</DOCUMENT>\n"
	tree := mustBuild(t, data, nil)
	if len(tree.Root.Children) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(tree.Root.Children))
	}
	text := tree.Root.Children[0].Child("TEXT")
	if text.Closed || string(text.Raw) != "no close\n" {
		t.Errorf("expected unclosed body ending at </DOCUMENT>, got closed=%v %q", text.Closed, text.Raw)
	}
	if len(tree.Anomalies) != 1 || tree.Anomalies[0].Kind != AnomalyUnterminated {
		t.Fatalf("expected one unterminated-opaque anomaly, got %+v", tree.Anomalies)
	}
	if tree.Anomalies[0].Detail != "no </TEXT> before </DOCUMENT>" {
		t.Errorf("unexpected detail %q", tree.Anomalies[0].Detail)
	}
}

func TestBuild_ByteOrderMark(t *testing.T) {
	tree := mustBuild(t, "\ufeff<SUBMISSION>\n<TYPE>8-K\n</SUBMISSION>\n", nil)
	if len(tree.Anomalies) != 0 {
		t.Errorf("expected no anomalies, got %+v", tree.Anomalies)
	}
	sub := tree.Root.Child("SUBMISSION")
	if sub == nil || sub.Offset != 3 {
		t.Fatalf("expected envelope at offset 3, got %+v", sub)
	}
}
