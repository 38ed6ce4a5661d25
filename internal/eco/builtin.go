package eco

import "strings"

func line(code, name, moves string) Entry {
	return Entry{Code: code, Name: name, Moves: strings.Fields(moves)}
}

var builtin = []Entry{
	line("A10", "English Opening", "c4"),
	line("A45", "Indian Defence", "d4 Nf6"),
	line("B01", "Scandinavian Defence", "e4 d5"),
	line("B07", "Pirc Defence", "e4 d6 d4 Nf6 Nc3 g6"),
	line("B10", "Caro-Kann Defence", "e4 c6"),
	line("B20", "Sicilian Defence", "e4 c5"),
	line("B33", "Sicilian Defence: Sveshnikov", "e4 c5 Nf3 Nc6 d4 cxd4 Nxd4 Nf6 Nc3 e5"),
	line("B90", "Sicilian Defence: Najdorf", "e4 c5 Nf3 d6 d4 cxd4 Nxd4 Nf6 Nc3 a6"),
	line("C00", "French Defence", "e4 e6"),
	line("C20", "King's Pawn Game", "e4 e5"),
	line("C30", "King's Gambit", "e4 e5 f4"),
	line("C44", "Scotch Game", "e4 e5 Nf3 Nc6 d4"),
	line("C50", "Italian Game", "e4 e5 Nf3 Nc6 Bc4"),
	line("C53", "Italian Game: Giuoco Piano", "e4 e5 Nf3 Nc6 Bc4 Bc5 c3"),
	line("C60", "Ruy Lopez", "e4 e5 Nf3 Nc6 Bb5"),
	line("D02", "London System", "d4 d5 Nf3 Nf6 Bf4"),
	line("D06", "Queen's Gambit", "d4 d5 c4"),
	line("D20", "Queen's Gambit Accepted", "d4 d5 c4 dxc4"),
	line("D30", "Queen's Gambit Declined", "d4 d5 c4 e6"),
	line("D10", "Slav Defence", "d4 d5 c4 c6"),
	line("E60", "King's Indian Defence", "d4 Nf6 c4 g6"),
	line("E20", "Nimzo-Indian Defence", "d4 Nf6 c4 e6 Nc3 Bb4"),
}
