package datamodel

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gocloud.dev/blob"
	"gopkg.in/yaml.v3"

	// Bucket drivers for Fetch: file:// and mem://.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// document is the YAML layout of a data model file:
//
//	enums:
//	  - name: Role
//	    values: [ADMIN, MEMBER]
//	models:
//	  - name: User
//	    fields:
//	      - {name: id, type: ID, id: true, auto: true}
//	      - {name: email, type: String, unique: true, required: true}
//	      - {name: role, type: Enum, enum: Role, default: MEMBER}
//	      - {name: posts, type: Relation, list: true, relation: {model: Post}}
type document struct {
	Enums  []*EnumDef `yaml:"enums"`
	Models []*Model   `yaml:"models"`
}

// Parse decodes a YAML data model and validates it.
func Parse(data []byte) (*InternalDataModel, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		// An empty document is an empty data model.
		if len(bytes.TrimSpace(data)) == 0 {
			return New(nil, nil)
		}
		return nil, fmt.Errorf("decode data model: %w", err)
	}
	return New(doc.Models, doc.Enums)
}

// Load reads and parses the YAML data model at path.
func Load(path string) (*InternalDataModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data model: %w", err)
	}
	dm, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dm, nil
}

// FromBucket reads and parses the data model stored under key.
func FromBucket(ctx context.Context, bucket *blob.Bucket, key string) (*InternalDataModel, error) {
	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read data model %s: %w", key, err)
	}
	dm, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return dm, nil
}

// Fetch opens the bucket at bucketURL (e.g. "file:///srv/models") and loads
// the data model stored under key.
func Fetch(ctx context.Context, bucketURL, key string) (*InternalDataModel, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	defer bucket.Close()

	return FromBucket(ctx, bucket, key)
}

// Marshal encodes dm in the YAML layout accepted by Parse.
func Marshal(dm *InternalDataModel) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document{Enums: dm.enums, Models: dm.models}); err != nil {
		return nil, fmt.Errorf("encode data model: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
