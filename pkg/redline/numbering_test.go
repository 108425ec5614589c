package redline

import (
	"testing"

	"github.com/jslattery/go-redline/pkg/redline/wml"
)

const numberingFixture = `<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:numPicBullet w:numPicBulletId="0"><w:pict><v:shape><v:imagedata r:id="rId1"/></v:shape></w:pict></w:numPicBullet>
<w:abstractNum w:abstractNumId="0">
	<w:multiLevelType w:val="hybridMultilevel"/>
	<w:lvl w:ilvl="0">
		<w:start w:val="1"/>
		<w:numFmt w:val="bullet"/>
		<w:lvlText w:val="&#61623;"/>
		<w:lvlJc w:val="left"/>
		<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr>
		<w:rPr><w:rFonts w:ascii="Symbol" w:hAnsi="Symbol"/></w:rPr>
	</w:lvl>
	<w:lvl w:ilvl="1">
		<w:numFmt w:val="decimal"/>
		<w:lvlText w:val="%2."/>
		<w:lvlJc w:val="left"/>
		<w:pPr><w:ind w:left="1440" w:hanging="360"/></w:pPr>
	</w:lvl>
</w:abstractNum>
<w:abstractNum w:abstractNumId="3">
	<w:multiLevelType w:val="singleLevel"/>
	<w:lvl w:ilvl="0">
		<w:numFmt w:val="bullet"/>
		<w:lvlText w:val="p"/>
		<w:lvlPicBulletId w:val="0"/>
	</w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
<w:num w:numId="2"><w:abstractNumId w:val="3"/></w:num>
</w:numbering>`

func parseNumberingFixture(t *testing.T, xml string) *Numbering {
	t.Helper()
	root, err := wml.Parse(xml, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return ParseNumbering(root)
}

func TestParseNumbering(t *testing.T) {
	n := parseNumberingFixture(t, numberingFixture)

	if len(n.Abstracts) != 2 {
		t.Fatalf("abstracts = %d, want 2", len(n.Abstracts))
	}
	a := n.Abstracts[0]
	if a.MultiLevelType != "hybridMultilevel" {
		t.Errorf("MultiLevelType = %q", a.MultiLevelType)
	}
	lvl := a.Levels[0]
	if lvl == nil {
		t.Fatal("level 0 missing")
	}
	if lvl.Format != "bullet" || lvl.Align != "left" || lvl.IndentLeft != "720" || lvl.IndentHanging != "360" {
		t.Errorf("level 0 = %+v", lvl)
	}
	if lvl.FontASCII != "Symbol" || lvl.FontHAnsi != "Symbol" {
		t.Errorf("level 0 fonts = %q/%q", lvl.FontASCII, lvl.FontHAnsi)
	}
	if lvl.PictBulletID != -1 {
		t.Errorf("level 0 PictBulletID = %d, want -1", lvl.PictBulletID)
	}
	if a.Levels[1] == nil || a.Levels[1].Format != "decimal" {
		t.Errorf("level 1 = %+v", a.Levels[1])
	}
	if a.Levels[2] != nil {
		t.Error("level 2 should be absent")
	}

	if got := n.Abstracts[3].Levels[0].PictBulletID; got != 0 {
		t.Errorf("picture level PictBulletID = %d, want 0", got)
	}

	if len(n.Instances) != 2 || n.Instances[1].AbstractID != 0 || n.Instances[2].AbstractID != 3 {
		t.Errorf("instances = %+v", n.Instances)
	}

	if len(n.Bullets) != 1 || n.Bullets[0].RelID != "rId1" {
		t.Errorf("bullets = %+v", n.Bullets)
	}
}

func TestNumberingMutationsTouchTree(t *testing.T) {
	n := parseNumberingFixture(t, numberingFixture)

	if !n.RemapInstance(2, 0) {
		t.Fatal("RemapInstance failed")
	}
	if !n.RemoveAbstract(3) {
		t.Fatal("RemoveAbstract failed")
	}
	if !n.Dirty() {
		t.Error("registry not dirty after mutation")
	}

	out := wml.Serialize(n.Root(), nil)
	reparsed := parseNumberingFixture(t, out)
	if len(reparsed.Abstracts) != 1 {
		t.Errorf("serialized tree kept %d abstracts, want 1", len(reparsed.Abstracts))
	}
	if reparsed.Instances[2].AbstractID != 0 {
		t.Errorf("instance 2 abstract = %d, want 0", reparsed.Instances[2].AbstractID)
	}
}

func TestInstancesOf(t *testing.T) {
	n := parseNumberingFixture(t, numberingFixture)
	if got := n.InstancesOf(0); len(got) != 1 || got[0] != 1 {
		t.Errorf("InstancesOf(0) = %v, want [1]", got)
	}
	if got := n.InstancesOf(99); got != nil {
		t.Errorf("InstancesOf(99) = %v, want nil", got)
	}
}
