/*
 * Copyright (C) 2022 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package main

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/netobserv/asn-ranges/pkg/api"
)

const header = `> Note: this file was automatically generated, to update execute "make docs"

# asn-ranges API
`

func iterate(output io.Writer, data interface{}, indent int) {
	t := reflect.TypeOf(data)
	if t == nil {
		return
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Map:
		iterate(output, reflect.Zero(t.Elem()).Interface(), indent+1)
	case reflect.Ptr:
		// the pointed struct is printed at the level of the pointer
		iterate(output, reflect.Zero(t.Elem()).Interface(), indent)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			writeField(output, t.Field(i), indent)
		}
	}
}

func writeField(output io.Writer, f reflect.StructField, indent int) {
	name := strings.ReplaceAll(f.Tag.Get(api.TagYaml), ",omitempty", "")
	doc := f.Tag.Get(api.TagDoc)
	pad := strings.Repeat(" ", 4*(indent+1))
	zero := reflect.Zero(f.Type).Interface()

	switch {
	case f.Tag.Get(api.TagEnum) != "":
		enumType := api.GetEnumReflectionTypeByFieldName(f.Tag.Get(api.TagEnum))
		fmt.Fprintf(output, "%s %s: (enum) %s\n", pad, name, doc)
		for j := 0; j < enumType.NumField(); j++ {
			value := enumType.Field(j)
			fmt.Fprintf(output, "%s     %s: %s\n", pad, value.Tag.Get(api.TagYaml), value.Tag.Get(api.TagDoc))
		}
	case strings.HasPrefix(doc, "#"):
		fmt.Fprintf(output, "\n%s\n<pre>\n%s %s:\n", doc, strings.Repeat(" ", 4*indent), name)
		iterate(output, zero, indent+1)
		fmt.Fprint(output, "</pre>")
	case doc != "":
		fmt.Fprintf(output, "%s %s: %s\n", pad, name, doc)
		iterate(output, zero, indent+1)
	}
}

func main() {
	output := new(bytes.Buffer)
	fmt.Fprint(output, header)
	iterate(output, api.API{}, 0)
	fmt.Print(output)
}
