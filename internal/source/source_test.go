// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeObjects struct {
	objects map[string][]byte
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestParseS3URI(t *testing.T) {
	testCases := []struct {
		uri    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://scans/study/1.dcm", "scans", "study/1.dcm", true},
		{"s3://scans/1.dcm", "scans", "1.dcm", true},
		{"s3://scans", "", "", false},
		{"s3://scans/", "", "", false},
		{"s3:///key", "", "", false},
		{"/tmp/1.dcm", "", "", false},
	}
	for _, tc := range testCases {
		bucket, key, err := ParseS3URI(tc.uri)
		if (err == nil) != tc.ok || bucket != tc.bucket || key != tc.key {
			t.Fatalf("ParseS3URI(%q) => (%q, %q, %v), want (%q, %q)", tc.uri, bucket, key, err, tc.bucket, tc.key)
		}
	}
}

func TestOpenerS3RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeObjects{objects: map[string][]byte{}}
	o := NewOpener(S3Config{}, nil)
	o.client = fake

	w, err := o.Create(ctx, "s3://scans/out.dcm")
	if err != nil {
		t.Fatalf("Create => unexpected error %v", err)
	}
	if _, err := w.Write([]byte("DICM")); err != nil {
		t.Fatalf("Write => unexpected error %v", err)
	}
	if _, ok := fake.objects["scans/out.dcm"]; ok {
		t.Fatalf("object uploaded before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close => unexpected error %v", err)
	}
	if _, err := w.Write([]byte("x")); err == nil {
		t.Fatalf("Write after Close => nil error, want error")
	}

	r, err := o.Open(ctx, "s3://scans/out.dcm")
	if err != nil {
		t.Fatalf("Open => unexpected error %v", err)
	}
	defer r.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "DICM" {
		t.Fatalf("read back %q, want DICM", got)
	}

	if _, err := o.Open(ctx, "s3://scans/missing.dcm"); err == nil {
		t.Fatalf("Open(missing) => nil error, want error")
	}
}

func TestOpenerLocal(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.dcm")
	o := NewOpener(S3Config{}, nil)

	w, err := o.Create(ctx, path)
	if err != nil {
		t.Fatalf("Create => unexpected error %v", err)
	}
	w.Write([]byte("local"))
	w.Close()

	r, err := o.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open => unexpected error %v", err)
	}
	defer r.Close()
	if got, _ := io.ReadAll(r); string(got) != "local" {
		t.Fatalf("read back %q, want local", got)
	}

	if _, err := o.Open(ctx, filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Open(missing) => %v, want %v", err, os.ErrNotExist)
	}
}

func TestOpenerStdio(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	o := NewOpener(S3Config{}, nil)
	o.stdin = strings.NewReader("in")
	o.stdout = &out

	r, _ := o.Open(ctx, "-")
	if got, _ := io.ReadAll(r); string(got) != "in" {
		t.Fatalf("stdin => %q, want in", got)
	}
	w, _ := o.Create(ctx, "-")
	w.Write([]byte("out"))
	if err := w.Close(); err != nil || out.String() != "out" {
		t.Fatalf("stdout => (%q, %v), want out", out.String(), err)
	}
}
