package xmlwalk

import "testing"

const sampleDoc = `<?xml version="1.0"?>
<root>
  <device>
    <serviceList>
      <service>
        <serviceId>urn:upnp-org:serviceId:SwitchPower</serviceId>
        <SCPDURL>/scpd.xml</SCPDURL>
        <controlURL>/ctl/SwitchPower</controlURL>
        <eventSubURL>/evt/SwitchPower</eventSubURL>
      </service>
    </serviceList>
  </device>
</root>`

func TestParseAndFind(t *testing.T) {
	root, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if root.Tag != "root" {
		t.Fatalf("expected root tag, got %q", root.Tag)
	}

	svc, ok := root.Find("service")
	if !ok {
		t.Fatal("expected to find service node")
	}

	scpd, ok := svc.ChildText("SCPDURL")
	if !ok || scpd != "/scpd.xml" {
		t.Fatalf("expected SCPDURL=/scpd.xml, got %q ok=%v", scpd, ok)
	}

	ctrl, ok := svc.ChildText("controlURL")
	if !ok || ctrl != "/ctl/SwitchPower" {
		t.Fatalf("expected controlURL, got %q ok=%v", ctrl, ok)
	}
}

func TestMissingNodeReturnsNotOK(t *testing.T) {
	root, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	svc, _ := root.Find("service")
	if _, ok := svc.ChildText("doesNotExist"); ok {
		t.Fatal("expected ok=false for a missing child")
	}
}

func TestFindAllReturnsEveryMatch(t *testing.T) {
	doc := `<root><a><service>1</service></a><b><service>2</service></b></root>`
	root, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	services := root.FindAll("service")
	if len(services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(services))
	}
}
