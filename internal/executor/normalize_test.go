package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Apt", "apt install htop", "apt install -y htop"},
		{"SudoApt", "sudo apt install htop git", "sudo apt install -y htop git"},
		{"AptGet", "apt-get install curl", "apt-get install -y curl"},
		{"AptAlreadyYes", "apt install -y htop", "apt install -y htop"},
		{"AptTrailingYes", "apt install htop --yes", "apt install htop --yes"},
		{"Pacman", "pacman -S neofetch", "pacman -S --noconfirm neofetch"},
		{"PacmanSyu", "pacman -Syu", "pacman -Syu --noconfirm"},
		{"PacmanAlready", "pacman -S --noconfirm git", "pacman -S --noconfirm git"},
		{"Dnf", "dnf install vim", "dnf install -y vim"},
		{"Yum", "yum install vim", "yum install -y vim"},
		{"Zypper", "zypper install vim", "zypper install -y vim"},
		{"Installer", "apt installer", "apt installer"},
		{"AptUpdate", "apt update", "apt update"},
		{
			"MultiLine",
			"#!/bin/sh\napt update\napt install htop\napt install -y git\n",
			"#!/bin/sh\napt update\napt install -y htop\napt install -y git\n",
		},
		{
			"Chained",
			"apt update && apt install htop; apt install -y git",
			"apt update && apt install -y htop; apt install -y git",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"apt install htop",
		"pacman -S git && dnf install vim",
		"yum install a; zypper install b\napt-get install c",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
