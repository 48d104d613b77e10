/*
Package schemata checks JSON documents against structural collection schemas.

A schema is a tree of nodes, each naming an expected kind (object, array,
string, number, integer, boolean, date) plus optional constraints: required
keys, per-property sub-schemas, array item schemas, minimum item counts,
numeric bounds and regular-expression patterns. The validator walks a document
and its schema together and returns every violation it finds, each with the
dot/index path of the offending value.

# Datasets

A dataset is a directory of *.json files. Each file holds the documents of one
collection, named after the file (orders.json -> orders). Files without a
registered schema are skipped; unreadable files are reported and make the run
invalid. Built-in schemas exist for the restaurants, users and orders
collections; more can be merged from a schema directory.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/schemata"
	)

	func main() {
		v, err := schemata.New()
		if err != nil {
			log.Fatal(err)
		}

		rep, err := v.ValidateDataset(context.Background(), "./dataset")
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(rep.Outcome().ExitCode())
	}

The schemata command wraps the same API: validate, schemas, serve (HTTP),
mcp (Model Context Protocol) and reports.
*/
package schemata
