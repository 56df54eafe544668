package loader

import (
	"fmt"
	"io"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"gopkg.in/yaml.v3"
)

type dumpDocument struct {
	Options      *yaml.Node        `yaml:"options,omitempty"`
	Include      []string          `yaml:"include,omitempty"`
	Transactions []dumpTransaction `yaml:"transactions"`
}

type dumpTransaction struct {
	Date      string        `yaml:"date"`
	Flag      string        `yaml:"flag,omitempty"`
	Payee     string        `yaml:"payee,omitempty"`
	Narration string        `yaml:"narration"`
	Tags      []string      `yaml:"tags,omitempty,flow"`
	Links     []string      `yaml:"links,omitempty,flow"`
	Meta      *yaml.Node    `yaml:"meta,omitempty"`
	Postings  []dumpPosting `yaml:"postings"`
}

type dumpPosting struct {
	Account  string     `yaml:"account"`
	Flag     string     `yaml:"flag,omitempty"`
	Units    string     `yaml:"units,omitempty"`
	Cost     any        `yaml:"cost,omitempty"`
	Price    string     `yaml:"price,omitempty"`
	Inferred bool       `yaml:"inferred,omitempty"`
	Meta     *yaml.Node `yaml:"meta,omitempty"`
}

// Dump writes tree back as a ledger document. Postings filled in by the ledger carry
// their units and are marked with inferred: true.
func Dump(w io.Writer, tree *ast.AST) error {
	doc := dumpDocument{
		Options:      optionsNode(tree.Options),
		Transactions: make([]dumpTransaction, 0, len(tree.Transactions)),
	}

	for _, inc := range tree.Includes {
		doc.Include = append(doc.Include, inc.Filename)
	}

	for _, txn := range tree.Transactions {
		doc.Transactions = append(doc.Transactions, dumpTransactionOf(txn))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

func dumpTransactionOf(txn *ast.Transaction) dumpTransaction {
	out := dumpTransaction{
		Date:      txn.Date.String(),
		Flag:      txn.Flag,
		Payee:     txn.Payee,
		Narration: txn.Narration,
		Meta:      metadataNode(txn.Metadata),
		Postings:  make([]dumpPosting, 0, len(txn.Postings)),
	}

	for _, tag := range txn.Tags {
		out.Tags = append(out.Tags, string(tag))
	}
	for _, link := range txn.Links {
		out.Links = append(out.Links, string(link))
	}

	for _, posting := range txn.Postings {
		p := dumpPosting{
			Account:  string(posting.Account),
			Flag:     posting.Flag,
			Inferred: posting.Inferred,
			Meta:     metadataNode(posting.Metadata),
		}
		if posting.Units != nil {
			p.Units = posting.Units.String()
		}
		if posting.Cost != nil {
			p.Cost = costValue(posting.Cost)
		}
		if posting.Price != nil {
			p.Price = posting.Price.String()
		}
		out.Postings = append(out.Postings, p)
	}

	return out
}

// costValue renders a plain cost as "N CUR" and a lot cost as a mapping.
func costValue(cost *ast.Cost) any {
	if cost.Date == nil && cost.Label == "" {
		return cost.Amount().String()
	}
	return rawCost{
		Number:   ast.FormatNumber(cost.Number),
		Currency: cost.Currency,
		Date:     cost.Date.String(),
		Label:    cost.Label,
	}
}

// optionsNode groups options by name in first-seen order; repeated names become lists.
func optionsNode(options []*ast.Option) *yaml.Node {
	if len(options) == 0 {
		return nil
	}

	var names []string
	values := make(map[string][]string)
	for _, opt := range options {
		if _, ok := values[opt.Name]; !ok {
			names = append(names, opt.Name)
		}
		values[opt.Name] = append(values[opt.Name], opt.Value)
	}

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range names {
		node.Content = append(node.Content, stringNode(name))
		if vs := values[name]; len(vs) == 1 {
			node.Content = append(node.Content, stringNode(vs[0]))
		} else {
			seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, v := range vs {
				seq.Content = append(seq.Content, stringNode(v))
			}
			node.Content = append(node.Content, seq)
		}
	}
	return node
}

// metadataNode renders metadata as a mapping in declaration order.
func metadataNode(metadata []*ast.Metadata) *yaml.Node {
	if len(metadata) == 0 {
		return nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range metadata {
		node.Content = append(node.Content, stringNode(m.Key), stringNode(m.Value))
	}
	return node
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
