package redline

import "encoding/xml"

// ContentTypesPart is the fixed name of the content-type registry part.
const ContentTypesPart = "[Content_Types].xml"

// DefaultType declares the content type for a file extension.
type DefaultType struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// OverrideType declares the content type for one specific part.
type OverrideType struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentTypesXML struct {
	XMLName   xml.Name       `xml:"Types"`
	Namespace string         `xml:"xmlns,attr"`
	Default   []DefaultType  `xml:"Default"`
	Override  []OverrideType `xml:"Override"`
}

// ContentTypes models the [Content_Types].xml registry. When a part is
// dropped from the package its override must go too, or Word rejects the
// whole file.
type ContentTypes struct {
	Defaults  []DefaultType
	Overrides []OverrideType
	dirty     bool
}

// ParseContentTypes parses the [Content_Types].xml part.
func ParseContentTypes(data []byte) (*ContentTypes, error) {
	var types contentTypesXML
	if err := xml.Unmarshal(data, &types); err != nil {
		return nil, NewPartError(ContentTypesPart, "parse content types", err)
	}
	return &ContentTypes{Defaults: types.Default, Overrides: types.Override}, nil
}

// HasOverride reports whether the given part has an override entry.
// Part names in the registry carry a leading slash.
func (c *ContentTypes) HasOverride(partName string) bool {
	name := registryPartName(partName)
	for _, o := range c.Overrides {
		if o.PartName == name {
			return true
		}
	}
	return false
}

// RemoveOverride deletes the override entry for the given part.
func (c *ContentTypes) RemoveOverride(partName string) bool {
	name := registryPartName(partName)
	for i, o := range c.Overrides {
		if o.PartName == name {
			c.Overrides = append(c.Overrides[:i], c.Overrides[i+1:]...)
			c.dirty = true
			return true
		}
	}
	return false
}

// AddOverride registers a content type for one part.
func (c *ContentTypes) AddOverride(partName, contentType string) {
	c.Overrides = append(c.Overrides, OverrideType{
		PartName:    registryPartName(partName),
		ContentType: contentType,
	})
	c.dirty = true
}

// Dirty reports whether the registry changed since load.
func (c *ContentTypes) Dirty() bool {
	return c.dirty
}

// Bytes serializes the registry back into part content.
func (c *ContentTypes) Bytes() ([]byte, error) {
	types := contentTypesXML{
		Namespace: "http://schemas.openxmlformats.org/package/2006/content-types",
		Default:   c.Defaults,
		Override:  c.Overrides,
	}
	body, err := xml.Marshal(types)
	if err != nil {
		return nil, NewPartError(ContentTypesPart, "serialize content types", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func registryPartName(partName string) string {
	if len(partName) > 0 && partName[0] == '/' {
		return partName
	}
	return "/" + partName
}
